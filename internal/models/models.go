package models

import (
	"time"

	"gorm.io/datatypes"
)

// DemoEnvironmentID is the environment served to guests when no
// environment header is supplied.
const DemoEnvironmentID uint = 1

type APIType string

const (
	AppStoreConnect APIType = "app_store_connect"
	GooglePlay      APIType = "google_play"
	OpenAI          APIType = "openai"
)

func (a APIType) Valid() bool {
	switch a {
	case AppStoreConnect, GooglePlay, OpenAI:
		return true
	}
	return false
}

type ScenarioType string

const (
	ScenarioSuccess   ScenarioType = "success"
	ScenarioError     ScenarioType = "error"
	ScenarioTimeout   ScenarioType = "timeout"
	ScenarioRateLimit ScenarioType = "rate_limit"
)

func (s ScenarioType) Valid() bool {
	switch s {
	case ScenarioSuccess, ScenarioError, ScenarioTimeout, ScenarioRateLimit:
		return true
	}
	return false
}

type SimpleModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Environment struct {
	SimpleModel
	OwnerID     string     `gorm:"size:128;index" json:"ownerId"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	Endpoints   []Endpoint `gorm:"constraint:OnDelete:CASCADE" json:"endpoints,omitempty"`
}

type Endpoint struct {
	SimpleModel
	EnvironmentID uint       `gorm:"not null;uniqueIndex:idx_endpoint_lookup,priority:1" json:"environmentId"`
	APIType       APIType    `gorm:"size:32;not null;uniqueIndex:idx_endpoint_lookup,priority:2" json:"apiType"`
	Path          string     `gorm:"size:512;not null;uniqueIndex:idx_endpoint_lookup,priority:3" json:"path"`
	Method        string     `gorm:"size:10;not null;uniqueIndex:idx_endpoint_lookup,priority:4" json:"method"`
	Description   string     `gorm:"type:text" json:"description"`
	Scenarios     []Scenario `gorm:"constraint:OnDelete:CASCADE" json:"scenarios,omitempty"`
}

type Scenario struct {
	SimpleModel
	EndpointID uint         `gorm:"not null;index" json:"endpointId"`
	Name       string       `gorm:"size:255;not null" json:"name"`
	Type       ScenarioType `gorm:"size:32;not null;index" json:"type"`
	// RequestConditions is stored and returned as-is; resolution ignores it.
	RequestConditions datatypes.JSON `json:"requestConditions,omitempty"`
	ResponseData      datatypes.JSON `json:"responseData"`
	StatusCode        int            `gorm:"not null" json:"statusCode"`
	DelayMs           int            `json:"delayMs"`
	IsDefault         bool           `gorm:"index" json:"isDefault"`
}

// LogEntry is an append-only record of one emulated call.
type LogEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RequestID      string    `gorm:"size:36" json:"requestId"`
	EnvironmentID  uint      `gorm:"not null;index" json:"environmentId"`
	EndpointID     *uint     `gorm:"index" json:"endpointId"`
	ScenarioID     *uint     `json:"scenarioId"`
	Method         string    `gorm:"size:10" json:"method"`
	Path           string    `gorm:"size:512" json:"path"`
	RequestHeaders string    `gorm:"type:text" json:"requestHeaders,omitempty"`
	RequestBody    string    `gorm:"type:text" json:"requestBody,omitempty"`
	ResponseStatus int       `json:"responseStatus"`
	ResponseBody   string    `gorm:"type:text" json:"responseBody,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (LogEntry) TableName() string {
	return "sandbox_logs"
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&Environment{},
		&Endpoint{},
		&Scenario{},
		&LogEntry{},
	}
}
