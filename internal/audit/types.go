package audit

import (
	"errors"
	"time"
)

var (
	ErrorNotInitialized = errors.New("not_initialized")
)

type Verb string

const (
	Create  Verb = "create"
	Delete  Verb = "delete"
	Update  Verb = "update"
	Get     Verb = "get"
	List    Verb = "list"
	Enroll  Verb = "enroll"
	Rotate  Verb = "rotate"
	Approve Verb = "approve"
	Reject  Verb = "reject"
	Accept  Verb = "accept"
)

type EntityType string

const (
	UserEntity EntityType = "user"
	OrgEntity  EntityType = "org"
)

type ResourceType string

const (
	UserResource          ResourceType = "user"
	UserMfaResource       ResourceType = "user_mfa"
	RecoveryCodesResource ResourceType = "recovery_codes"
	SessionResource       ResourceType = "session"
	OrgResource           ResourceType = "org"
	OrgInviteResource     ResourceType = "org_invite"
	OrgMemberResource     ResourceType = "org_member"
)

type Status string

const (
	Success Status = "success"
	Failed  Status = "failed"
)

type LogEntries []LogEntry

type LogEntry struct {
	EntityId     string         `bson:"entityId"`
	EntityType   EntityType     `bson:"entityType"`
	Verb         Verb           `bson:"verb"`
	ResourceId   string         `bson:"resourceId,omitempty"`
	ResourceType ResourceType   `bson:"resourceType,omitempty"`
	Status       Status         `bson:"status,omitempty"`
	SrcIp        *string        `bson:"srcIp,omitempty"`
	SrcUa        *string        `bson:"srcUa,omitempty"`
	Timestamp    time.Time      `bson:"timestamp"`
	Data         map[string]any `bson:"data,omitempty"`
}

type Logger interface {
	Log(entry LogEntry) error
	GetByEntity(entityId string, entityType EntityType, cursor time.Time, limit int64) (LogEntries, error)
}
