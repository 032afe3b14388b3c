package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/orgdir/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey|pkey)$`)

// ErrCode returns the Code of the first Postgres error in the chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError copies the interesting fields out of a *pgconn.PgError.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// Describe returns a one-line operator-facing summary of a database error.
// Non-Postgres errors are returned unchanged.
func Describe(err error) string {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) {
		return err.Error()
	}

	sqlErr := ConvertPgError(pgerr)
	switch sqlErr.Code {
	case ForeignKeyViolation:
		if sqlErr.TableName == "departments" {
			return "department hierarchy references a parent that was never loaded: " + sqlErr.Error()
		}
		return fmt.Sprintf("%s references a %s that does not exist: %s",
			entityName(sqlErr.TableName, ""), entityName("", sqlErr.ColumnName), sqlErr.Error())
	case NotNullViolation:
		if sqlErr.TableName == "people" && sqlErr.ColumnName == "department_id" {
			return "person department could not be resolved: " + sqlErr.Error()
		}
		return fmt.Sprintf("%s is required on %s: %s", sqlErr.ColumnName, sqlErr.TableName, sqlErr.Error())
	case UniqueViolation:
		return "record already exists: " + sqlErr.Error()
	default:
		return sqlErr.Error()
	}
}

func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	switch {
	case domain == "PEOPLE":
		domain = "PERSON"
	case strings.HasSuffix(domain, "S") && len(domain) > 1:
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringTooLong:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// entityName prefers a *_id column ("department_id" -> "Department"), then
// the singular table name, then "record".
func entityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}
	if columnName == "parent" {
		return "Parent Department"
	}

	switch {
	case tableName == "people":
		return "Person"
	case tableName != "":
		return humanizeText(strings.TrimSuffix(tableName, "s"))
	}
	return "record"
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}
	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueKeyPattern.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}
	return ""
}

// HandleError converts a database error into an *errs.HTTPError.
// An *errs.HTTPError already in the chain is returned unchanged.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		entity := entityName(sqlErr.TableName, sqlErr.ColumnName)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(
				fmt.Sprintf("The referenced %s does not exist", entity), false, &errorCode, nil)
		case UniqueViolation:
			message := fmt.Sprintf("A %s with this identifier already exists", entity)
			if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
				message = strings.ReplaceAll(message, "identifier", humanizeText(column))
			}
			return errs.NewBadRequestError(message, true, &errorCode, nil)
		case NotNullViolation:
			field := humanizeText(sqlErr.ColumnName)
			if field == "" {
				field = "field"
			}
			return errs.NewBadRequestError(fmt.Sprintf("The %s is required", field), true, &errorCode,
				[]errs.FieldError{{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"}})
		case CheckViolation, StringTooLong:
			return errs.NewBadRequestError("One or more values do not meet required conditions", true, &errorCode, nil)
		case ConnectionFailure:
			return errs.NewServiceUnavailableError("The directory database is unavailable")
		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
