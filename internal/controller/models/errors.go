package models

import "fmt"

var (
	ErrorDuplicateEntry = fmt.Errorf("duplicate_entry")
	ErrorNotFound       = fmt.Errorf("not_found")
	ErrorInvalidInput   = fmt.Errorf("invalid_input")

	ErrorDatabaseUndefined       = fmt.Errorf("database_undefined")
	ErrorStmtPreparationFailed   = fmt.Errorf("stmt_preparation_failed")
	ErrorInsertFailed            = fmt.Errorf("insert_failed")
	ErrorSelectFailed            = fmt.Errorf("select_failed")
	ErrorSelectsFailed           = fmt.Errorf("selects_failed")
	ErrorUpdateFailed            = fmt.Errorf("update_failed")
	ErrorDeleteFailed            = fmt.Errorf("delete_failed")
	ErrorRowsAffectedCheckFailed = fmt.Errorf("rows_affected_check_failed")

	errorNoDatabaseConnection  = fmt.Errorf("no_database_connection")
	errorInputValidationFailed = fmt.Errorf("input_validation_failed")

	mysqlErrorDuplicateEntryCode uint16 = 1062
)
