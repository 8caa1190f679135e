package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/llm"
	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
)

var ErrEmptyMessage = errors.New("message is required")

type ChatTaskStore interface {
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
}

type InteractionLog interface {
	RecordInteraction(ctx context.Context, kind, content string) (*models.Interaction, error)
}

type ChatRequest struct {
	Message  string `json:"message"`
	UserName string `json:"userName,omitempty"`
}

type ChatResult struct {
	Reply        string               `json:"reply"`
	CreatedTasks []models.Task        `json:"createdTasks,omitempty"`
	Unlocked     []models.Achievement `json:"unlocked,omitempty"`
	AIUsage      int                  `json:"aiUsage"`
}

// ChatService runs one assistant turn: personalize, ask the model, act on its
// task directives, and re-check achievements.
type ChatService struct {
	model        llm.LLM
	tasks        ChatTaskStore
	interactions InteractionLog
	engine       *AchievementEngine
	analyzer     *BehaviorAnalyzer
	memory       *PatternMemory
	unlocks      *UnlockState
	logger       *logger.Log
}

func NewChatService(model llm.LLM, tasks ChatTaskStore, interactions InteractionLog, engine *AchievementEngine,
	analyzer *BehaviorAnalyzer, memory *PatternMemory, unlocks *UnlockState) *ChatService {
	return &ChatService{
		model:        model,
		tasks:        tasks,
		interactions: interactions,
		engine:       engine,
		analyzer:     analyzer,
		memory:       memory,
		unlocks:      unlocks,
		logger:       logger.New().With(zap.String("component", "chat")),
	}
}

func (s *ChatService) Send(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	usage, err := s.engine.IncrementAIUsage(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to count ai usage")
	}

	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	var pending []models.Task
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}

	prompt := s.analyzer.BuildPersonalizedPrompt(s.memory, message, PromptContext{
		UserName:     req.UserName,
		PendingTasks: pending,
	})

	reply, err := s.model.Chat(ctx, []models.ChatMessage{
		{Role: models.RoleSystem, Content: prompt},
		{Role: models.RoleUser, Content: message},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}

	var created []models.Task
	for _, d := range ParseTaskDirectives(reply) {
		task, err := s.tasks.CreateTask(ctx, models.CreateTaskRequest{
			Title:       d.Title,
			Description: d.Description,
			Priority:    d.Priority,
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to create task from directive", zap.String("title", d.Title))
			continue
		}
		created = append(created, *task)
	}

	kind := models.InteractionChat
	if len(created) > 0 {
		kind = models.InteractionTaskCreation
	}
	if _, err := s.interactions.RecordInteraction(ctx, kind, message); err != nil {
		s.logger.WithError(err).Warn("failed to record interaction")
	}

	tasks = append(tasks, created...)
	stats := s.engine.GetUserStats(tasks)
	unlocked := s.engine.CheckAchievements(ctx, s.unlocks, stats, tasks)

	text := StripTaskDirectives(reply)
	if text == "" {
		text = reply
	}

	return &ChatResult{
		Reply:        text,
		CreatedTasks: created,
		Unlocked:     unlocked,
		AIUsage:      usage,
	}, nil
}
