package models

// PatternSet is the bundle of behavioral statistics mined from a task list.
type PatternSet struct {
	ProductiveHours         string              `json:"productiveHours"`
	RealTaskDurations       map[string]int      `json:"realTaskDurations"`
	PhrasePatterns          map[string][]string `json:"phrasePatterns"`
	ProcrastinationPatterns []string            `json:"procrastinationPatterns"`
	TaskRelationships       map[string][]string `json:"taskRelationships"`
}

type Preferences struct {
	CommunicationStyle string `json:"communicationStyle,omitempty"`
	TimePreferences    string `json:"timePreferences,omitempty"`
}
