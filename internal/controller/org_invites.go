package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"vigil/internal/audit"
	"vigil/internal/common"
	"vigil/internal/controller/models"
	"vigil/internal/events"

	"github.com/gorilla/mux"
)

func registerOrgRoutes(opts RouteRegistrationOpts) {
	v1 := opts.Router.PathPrefix("/v1/orgs").Subrouter()
	v1.Use(getRouteAuther(opts.ServiceLogs))

	v1.HandleFunc("/{orgId}/invite-requests/{memberId}", handleGetOrgInviteRequestV1).Methods(http.MethodGet)
	v1.HandleFunc("/{orgId}/invite-requests/{memberId}", handleUpdateOrgInviteRequestV1).Methods(http.MethodPut)
	v1.HandleFunc("/{orgId}/invite-requests/{memberId}", handleDeleteOrgInviteRequestV1).Methods(http.MethodDelete)
}

type orgInviteRequestContext struct {
	Caller    identity
	Requester *models.OrgMember
	OrgId     string
	MemberId  string
}

// resolveInviteRequest runs the checks shared by every invite-request
// verb: path validation, the requester's membership, and the required
// scope. `me` is not a valid member id on these endpoints.
func resolveInviteRequest(w http.ResponseWriter, r *http.Request, scope string) (*orgInviteRequestContext, bool) {
	caller := r.Context().Value(authRequestContext).(identity)
	vars := mux.Vars(r)
	orgId := vars["orgId"]
	memberId := vars["memberId"]
	if memberId == "me" {
		common.SendHttpFailResponse(w, r, http.StatusNotFound, detailsInvalidMemberId, ErrorMemberNotFound)
		return nil, false
	}
	requester, err := models.GetOrgMemberV1(models.GetOrgMemberV1Opts{
		Db:     db,
		OrgId:  orgId,
		UserId: &caller.UserId,
	})
	if err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			common.SendHttpFailResponse(w, r, http.StatusForbidden, "failed to verify org membership", ErrorInsufficientScope)
			return nil, false
		}
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve org membership", ErrorDatabaseIssue)
		return nil, false
	}
	if !models.HasScope(requester.Role, scope) {
		common.SendHttpFailResponse(w, r, http.StatusForbidden, "failed to verify permissions", ErrorInsufficientScope)
		return nil, false
	}
	return &orgInviteRequestContext{
		Caller:    caller,
		Requester: requester,
		OrgId:     orgId,
		MemberId:  memberId,
	}, true
}

func getInviteRequestMember(w http.ResponseWriter, r *http.Request, orgId, memberId string) (*models.OrgMember, bool) {
	member, err := models.GetOrgMemberV1(models.GetOrgMemberV1Opts{
		Db:       db,
		OrgId:    orgId,
		MemberId: &memberId,
	})
	if err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			common.SendHttpFailResponse(w, r, http.StatusNotFound, "failed to find invite request", ErrorMemberNotFound)
			return nil, false
		}
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve invite request", ErrorDatabaseIssue)
		return nil, false
	}
	return member, true
}

type orgInviteRequestOutput struct {
	Member *models.OrgMember `json:"member"`
	Teams  []string          `json:"teams"`
}

func getInviteRequestOutput(member *models.OrgMember) (*orgInviteRequestOutput, error) {
	teams, err := models.ListOrgMemberTeamsV1(models.ListOrgMemberTeamsV1Opts{
		Db:       db,
		MemberId: member.Id,
	})
	if err != nil {
		return nil, err
	}
	return &orgInviteRequestOutput{Member: member, Teams: teams}, nil
}

// handleGetOrgInviteRequestV1 returns the invite request's membership
// record together with its suggested team assignments.
func handleGetOrgInviteRequestV1(w http.ResponseWriter, r *http.Request) {
	request, ok := resolveInviteRequest(w, r, "member:read")
	if !ok {
		return
	}
	member, ok := getInviteRequestMember(w, r, request.OrgId, request.MemberId)
	if !ok {
		return
	}
	output, err := getInviteRequestOutput(member)
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve team assignments", ErrorDatabaseIssue)
		return
	}
	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", output)
}

type handleUpdateOrgInviteRequestV1Input struct {
	// Role replaces the suggested role when set
	Role *string `json:"role"`

	// Teams replaces the suggested team assignments when set
	Teams []string `json:"teams"`

	// Approve converts the join request into a sent invite
	Approve bool `json:"approve"`
}

// handleUpdateOrgInviteRequestV1 partially updates an invite request's
// suggested role and team assignments, and optionally approves it.
// Approval is idempotent for requests that were already approved.
func handleUpdateOrgInviteRequestV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	request, ok := resolveInviteRequest(w, r, "member:write")
	if !ok {
		return
	}

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to read request body", ErrorInvalidInput)
		return
	}
	var input handleUpdateOrgInviteRequestV1Input
	if len(requestBody) > 0 {
		if err := json.Unmarshal(requestBody, &input); err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to parse request body", ErrorInvalidInput)
			return
		}
	}

	member, ok := getInviteRequestMember(w, r, request.OrgId, request.MemberId)
	if !ok {
		return
	}

	if input.Role != nil {
		if err := models.UpdateOrgMemberRoleV1(models.UpdateOrgMemberRoleV1Opts{
			Db:       db,
			OrgId:    request.OrgId,
			MemberId: request.MemberId,
			Role:     *input.Role,
		}); err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to receive a valid role", ErrorInvalidInput)
			return
		}
	}
	if input.Teams != nil {
		if err := models.ReplaceOrgMemberTeamsV1(models.ReplaceOrgMemberTeamsV1Opts{
			Db:       db,
			OrgId:    request.OrgId,
			MemberId: request.MemberId,
			Teams:    input.Teams,
		}); err != nil {
			if errors.Is(err, models.ErrorNotFound) {
				common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to receive valid team assignments", ErrorInvalidInput)
				return
			}
			common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to update team assignments", ErrorDatabaseIssue)
			return
		}
	}

	if input.Approve {
		if !models.HasScope(request.Requester.Role, "member:admin") {
			common.SendHttpFailResponse(w, r, http.StatusForbidden, "failed to verify permissions", ErrorInsufficientScope)
			return
		}
		token, err := models.ApproveOrgInviteRequestV1(models.ApproveOrgInviteRequestV1Opts{
			Db:         db,
			OrgId:      request.OrgId,
			MemberId:   request.MemberId,
			ApproverId: request.Requester.Id,
		})
		if err != nil {
			if errors.Is(err, models.ErrorNotFound) && member.InviteStatus != models.InviteStatusApproved {
				common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to approve invite request", ErrorInvalidInput)
				return
			}
			if !errors.Is(err, models.ErrorNotFound) {
				common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to approve invite request", ErrorDatabaseIssue)
				return
			}
			log(common.LogLevelDebug, fmt.Sprintf("invite request[%s] was already approved", request.MemberId))
		}
		if token != "" {
			notifyInviteApproved(request.OrgId, member.Email, token)
		}
		recordAudit(audit.LogEntry{
			EntityId:     request.OrgId,
			EntityType:   audit.OrgEntity,
			Verb:         audit.Approve,
			ResourceId:   request.MemberId,
			ResourceType: audit.OrgInviteResource,
			Status:       audit.Success,
			SrcIp:        &request.Caller.SourceIp,
			SrcUa:        &request.Caller.UserAgent,
			Data:         map[string]any{"approverId": request.Requester.Id},
		})
		publishActivity(r.Context(), events.SecurityActivity{
			Type:   events.ActivityInviteApprove,
			UserId: request.Caller.UserId,
			Data:   map[string]any{"orgId": request.OrgId, "memberId": request.MemberId},
		})
	}

	updated, ok := getInviteRequestMember(w, r, request.OrgId, request.MemberId)
	if !ok {
		return
	}
	output, err := getInviteRequestOutput(updated)
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve team assignments", ErrorDatabaseIssue)
		return
	}
	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", output)
}

// handleDeleteOrgInviteRequestV1 rejects a join request by removing
// its membership record.
func handleDeleteOrgInviteRequestV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	request, ok := resolveInviteRequest(w, r, "member:write")
	if !ok {
		return
	}
	if err := models.DeleteOrgInviteRequestV1(models.DeleteOrgInviteRequestV1Opts{
		Db:       db,
		OrgId:    request.OrgId,
		MemberId: request.MemberId,
	}); err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			common.SendHttpFailResponse(w, r, http.StatusNotFound, "failed to find invite request", ErrorMemberNotFound)
			return
		}
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to reject invite request", ErrorDatabaseIssue)
		return
	}
	log(common.LogLevelInfo, fmt.Sprintf("rejected invite request[%s] in org[%s]", request.MemberId, request.OrgId))
	recordAudit(audit.LogEntry{
		EntityId:     request.OrgId,
		EntityType:   audit.OrgEntity,
		Verb:         audit.Reject,
		ResourceId:   request.MemberId,
		ResourceType: audit.OrgInviteResource,
		Status:       audit.Success,
		SrcIp:        &request.Caller.SourceIp,
		SrcUa:        &request.Caller.UserAgent,
	})
	publishActivity(r.Context(), events.SecurityActivity{
		Type:   events.ActivityInviteReject,
		UserId: request.Caller.UserId,
		Data:   map[string]any{"orgId": request.OrgId, "memberId": request.MemberId},
	})
	common.SendHttpSuccessResponse(w, r, http.StatusNoContent, "ok")
}
