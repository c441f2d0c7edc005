package controller

import (
	"reflect"
	"testing"
	"vigil/pkg/controller"
)

type structInfo struct {
	Name         string
	FieldTypeMap map[string]string
}

func getStructFieldInfo(v any) structInfo {
	result := structInfo{FieldTypeMap: make(map[string]string)}

	val := reflect.ValueOf(v)
	typ := reflect.TypeOf(v)

	// If it's a pointer, resolve it to the element
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return result
	}

	result.Name = typ.Name()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldName := field.Name
		var jsonTagValue *string = nil
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" {
			jsonTagValue = &fieldName
		} else if jsonTag != "-" {
			jsonTagValue = &jsonTag
		}

		if jsonTagValue != nil {
			result.FieldTypeMap[*jsonTagValue] = field.Type.String()
		}
	}

	return result
}

func validateModelContract(i structInfo, j structInfo, t *testing.T) {
	for m, n := range i.FieldTypeMap {
		o, ok := j.FieldTypeMap[m]
		if !ok {
			t.Errorf(
				"%s[%s] doesn't exist in %s",
				i.Name,
				m,
				j.Name,
			)
			continue
		}
		if n != o {
			t.Errorf(
				"%s[%s]'s type[%s] doesn't match %s[%s]'s type[%s]",
				i.Name,
				m,
				n,
				j.Name,
				m,
				o,
			)
		}
	}
}

func TestSessionSdkContracts(t *testing.T) {
	currentStruct := getStructFieldInfo(handleCreateSessionV1Input{})
	contractStruct := getStructFieldInfo(controller.CreateSessionV1Input{})
	validateModelContract(currentStruct, contractStruct, t)

	currentStruct = getStructFieldInfo(handleCreateSessionV1Output{})
	contractStruct = getStructFieldInfo(controller.CreateSessionV1Output{})
	validateModelContract(currentStruct, contractStruct, t)

	currentStruct = getStructFieldInfo(handleDeleteSessionV1Output{})
	contractStruct = getStructFieldInfo(controller.DeleteSessionV1Output{})
	validateModelContract(currentStruct, contractStruct, t)
}

func TestEnrollmentSdkContracts(t *testing.T) {
	currentStruct := getStructFieldInfo(handleCompleteEnrollmentV1Input{})
	contractStruct := getStructFieldInfo(controller.CompleteEnrollmentV1Input{})
	validateModelContract(currentStruct, contractStruct, t)
}

func TestOrgInviteSdkContracts(t *testing.T) {
	currentStruct := getStructFieldInfo(handleUpdateOrgInviteRequestV1Input{})
	contractStruct := getStructFieldInfo(controller.UpdateOrgInviteRequestV1Input{})
	validateModelContract(currentStruct, contractStruct, t)
}
