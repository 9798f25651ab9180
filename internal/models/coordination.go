package models

import (
	"slices"
	"time"
)

type CoordinationStatus string

const (
	CoordinationPlanning  CoordinationStatus = "planning"
	CoordinationActive    CoordinationStatus = "active"
	CoordinationCompleted CoordinationStatus = "completed"
)

func (s CoordinationStatus) Valid() bool {
	switch s {
	case CoordinationPlanning, CoordinationActive, CoordinationCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssignedTo  []string     `json:"assigned_to"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueBy       *time.Time   `json:"due_by,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

type ResponseTeam struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Lead           string   `json:"lead"`
	Members        []string `json:"members"`
	AssignedTasks  []Task   `json:"assigned_tasks"`
	Specialization string   `json:"specialization,omitempty"`
}

type Resource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Location    string `json:"location,omitempty"`
	AllocatedTo string `json:"allocated_to,omitempty"`
	Available   bool   `json:"available"`
}

// TimelineEvent - неизменяемая запись хронологии реагирования
type TimelineEvent struct {
	ID          string            `json:"id"`
	IncidentID  string            `json:"incident_id"`
	Timestamp   time.Time         `json:"timestamp"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	PerformedBy string            `json:"performed_by"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ResponseCoordination - агрегат координации, ключ совпадает с ID инцидента
type ResponseCoordination struct {
	ID            string             `json:"id"`
	IncidentID    string             `json:"incident_id"`
	CoordinatorID string             `json:"coordinator_id,omitempty"`
	Teams         []ResponseTeam     `json:"teams"`
	Resources     []Resource         `json:"resources"`
	Timeline      []TimelineEvent    `json:"timeline"`
	Status        CoordinationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int64              `json:"version"`
}

// Team возвращает индекс команды или -1
func (c *ResponseCoordination) Team(teamID string) int {
	return slices.IndexFunc(c.Teams, func(t ResponseTeam) bool { return t.ID == teamID })
}

// Resource возвращает индекс ресурса или -1
func (c *ResponseCoordination) Resource(resourceID string) int {
	return slices.IndexFunc(c.Resources, func(r Resource) bool { return r.ID == resourceID })
}

// Clone - глубокая копия агрегата
func (c *ResponseCoordination) Clone() *ResponseCoordination {
	cp := *c
	cp.Teams = make([]ResponseTeam, len(c.Teams))
	for i, t := range c.Teams {
		t.Members = slices.Clone(t.Members)
		tasks := make([]Task, len(t.AssignedTasks))
		for j, task := range t.AssignedTasks {
			task.AssignedTo = slices.Clone(task.AssignedTo)
			tasks[j] = task
		}
		t.AssignedTasks = tasks
		cp.Teams[i] = t
	}
	cp.Resources = slices.Clone(c.Resources)
	cp.Timeline = slices.Clone(c.Timeline)
	return &cp
}
