package controller

import (
	"context"
	"errors"
	"vigil/internal/audit"
	"vigil/internal/common"
	"vigil/internal/controller/models"
	"vigil/internal/email"
	"vigil/internal/events"
	"vigil/internal/mfa"
)

func serviceLogf(level common.LogLevel, text string, args ...any) {
	if serviceLogs == nil {
		return
	}
	*serviceLogs <- common.ServiceLogf(level, text, args...)
}

// recordAudit writes to the audit trail without failing the caller; an
// uninitialized trail is fine in development setups.
func recordAudit(entry audit.LogEntry) {
	if err := audit.Log(entry); err != nil && !errors.Is(err, audit.ErrorNotInitialized) {
		serviceLogf(common.LogLevelWarn, "failed to write audit entry for entity[%s]: %s", entry.EntityId, err)
	}
}

// publishActivity emits a security activity event without failing the
// caller.
func publishActivity(ctx context.Context, activity events.SecurityActivity) {
	if eventsPublisher == nil {
		return
	}
	if err := eventsPublisher.Publish(ctx, activity); err != nil {
		serviceLogf(common.LogLevelWarn, "failed to publish activity[%s] for user[%s]: %s", activity.Type, activity.UserId, err)
	}
}

func interfaceDisplayName(kind mfa.Kind) string {
	switch kind {
	case mfa.KindTotp:
		return "Authenticator App"
	case mfa.KindSms:
		return "Text Message"
	case mfa.KindWebauthn:
		return "Security Key"
	}
	return string(kind)
}

// notifyInviteApproved mails the invited address its accept link.
// Best-effort; a failed delivery never fails the approval.
func notifyInviteApproved(orgId, recipient, token string) {
	if !smtpConfig.IsSet() {
		return
	}
	org, err := models.GetOrgV1(models.GetOrgV1Opts{Db: db, Id: &orgId})
	if err != nil {
		serviceLogf(common.LogLevelWarn, "failed to load org[%s] for invite notification: %s", orgId, err)
		return
	}
	inviteUrl := ""
	if publicServerUrl != nil {
		inviteUrl = publicServerUrl.JoinPath("join", token).String()
	}
	if err := email.SendOrgInviteNotification(email.OrgInviteNotificationOpts{
		To:     email.User{Address: recipient},
		Sender: smtpConfig.Sender,
		Smtp: email.SmtpConfig{
			Hostname: smtpConfig.Hostname,
			Port:     smtpConfig.Port,
			Username: smtpConfig.Username,
			Password: smtpConfig.Password,
		},
		OrgName:   org.Name,
		InviteUrl: inviteUrl,
	}); err != nil {
		serviceLogf(common.LogLevelWarn, "failed to send invite notification to address[%s]: %s", recipient, err)
	}
}

// securityRecorder fans a successful enrollment out to the audit
// trail, the events stream, and the account owner's mailbox.
type securityRecorder struct{}

func (r securityRecorder) RecordAuthenticatorAdded(ctx context.Context, userId string, kind mfa.Kind, deviceName string) error {
	recordAudit(audit.LogEntry{
		EntityId:     userId,
		EntityType:   audit.UserEntity,
		Verb:         audit.Enroll,
		ResourceId:   string(kind),
		ResourceType: audit.UserMfaResource,
		Status:       audit.Success,
		Data:         map[string]any{"deviceName": deviceName},
	})
	publishActivity(ctx, events.SecurityActivity{
		Type:   events.ActivityMfaAdded,
		UserId: userId,
		Data:   map[string]any{"kind": string(kind), "deviceName": deviceName},
	})
	r.notifyOwner(userId, kind, deviceName)
	return nil
}

func (r securityRecorder) notifyOwner(userId string, kind mfa.Kind, deviceName string) {
	if !smtpConfig.IsSet() {
		return
	}
	user, err := models.GetUserV1(models.GetUserV1Opts{Db: db, Id: &userId})
	if err != nil {
		serviceLogf(common.LogLevelWarn, "failed to load user[%s] for enrollment notification: %s", userId, err)
		return
	}
	if err := email.SendMfaAddedNotification(email.MfaAddedNotificationOpts{
		To:     email.User{Address: user.Email},
		Sender: smtpConfig.Sender,
		Smtp: email.SmtpConfig{
			Hostname: smtpConfig.Hostname,
			Port:     smtpConfig.Port,
			Username: smtpConfig.Username,
			Password: smtpConfig.Password,
		},
		InterfaceName: interfaceDisplayName(kind),
		DeviceName:    deviceName,
	}); err != nil {
		serviceLogf(common.LogLevelWarn, "failed to send enrollment notification to user[%s]: %s", userId, err)
	}
}
