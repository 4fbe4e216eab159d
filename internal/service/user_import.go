package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
)

const maxImportRows = 1000

var (
	ErrImportNoData        = errors.New("The file has no data rows (the first row is the header)")
	ErrImportTooManyRows   = fmt.Errorf("The file has more than %d data rows", maxImportRows)
	ErrImportBadHeader     = errors.New("The header must contain email, first_name, last_name and role columns")
	ErrImportUnsupported   = errors.New("Only .xlsx and .xls files can be imported")
	ErrImportUnreadable    = errors.New("The spreadsheet could not be read")
	importRequiredColumns  = []string{"email", "first_name", "last_name", "role"}
	importOptionalColumns  = []string{"manager_email", "department", "job_title", "hire_date"}
	importHeaderAliasTable = map[string]string{
		"email":         "email",
		"e-mail":        "email",
		"first_name":    "first_name",
		"first name":    "first_name",
		"firstname":     "first_name",
		"last_name":     "last_name",
		"last name":     "last_name",
		"lastname":      "last_name",
		"role":          "role",
		"manager_email": "manager_email",
		"manager email": "manager_email",
		"manager":       "manager_email",
		"department":    "department",
		"job_title":     "job_title",
		"job title":     "job_title",
		"title":         "job_title",
		"hire_date":     "hire_date",
		"hire date":     "hire_date",
	}
)

// ImportUserRow one parsed spreadsheet row
type ImportUserRow struct {
	Row          int
	Email        string
	FirstName    string
	LastName     string
	Role         string
	ManagerEmail string
	Department   string
	JobTitle     string
	HireDate     string
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile reads the first sheet of an .xlsx or legacy .xls workbook.
func (s *userService) ParseImportFile(filename string, data []byte) ([]ImportUserRow, error) {
	var cells [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		cells, err = readXLSX(data)
	case ".xls":
		cells, err = readXLS(data)
	default:
		return nil, ErrImportUnsupported
	}
	if err != nil {
		s.logger.Warn("parse import file failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	return rowsFromCells(cells)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrImportNoData
	}
	return wb.ReadAllCells(maxImportRows + 1), nil
}

func rowsFromCells(cells [][]string) ([]ImportUserRow, error) {
	if len(cells) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(cells[0])
	for _, col := range importRequiredColumns {
		if colIndex[col] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	get := func(row []string, col string) string {
		idx := colIndex[col]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportUserRow
	for i := 1; i < len(cells); i++ {
		r := cells[i]
		item := ImportUserRow{
			Row:          i + 1,
			Email:        get(r, "email"),
			FirstName:    get(r, "first_name"),
			LastName:     get(r, "last_name"),
			Role:         strings.ToUpper(get(r, "role")),
			ManagerEmail: get(r, "manager_email"),
			Department:   get(r, "department"),
			JobTitle:     get(r, "job_title"),
			HireDate:     get(r, "hire_date"),
		}
		if item.Role != "" && !strings.HasPrefix(item.Role, "ROLE_") {
			item.Role = "ROLE_" + item.Role
		}

		if item.Email == "" && item.FirstName == "" && item.LastName == "" && item.Role == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex maps canonical column names to their index, -1 if absent.
func parseHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(importRequiredColumns)+len(importOptionalColumns))
	for _, c := range importRequiredColumns {
		idx[c] = -1
	}
	for _, c := range importOptionalColumns {
		idx[c] = -1
	}
	for i, h := range header {
		if canonical, ok := importHeaderAliasTable[strings.ToLower(strings.TrimSpace(h))]; ok && idx[canonical] < 0 {
			idx[canonical] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers validates every row first, then writes the valid ones in a
// single transaction. Managers may be existing users or rows earlier in the
// same file.
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	fail := func(row int, format string, args ...interface{}) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: fmt.Sprintf(format, args...)})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash default password failed", zap.Error(err))
		return nil, err
	}

	type validatedRow struct {
		row          ImportUserRow
		role         access.Role
		managerEmail string
	}
	var valid []validatedRow
	seen := make(map[string]bool, len(rows))
	roleOf := make(map[string]access.Role, len(rows))

	for _, row := range rows {
		if row.Email == "" || row.FirstName == "" || row.LastName == "" || row.Role == "" {
			fail(row.Row, "Required field is empty")
			continue
		}
		key := strings.ToLower(row.Email)
		if seen[key] {
			fail(row.Row, "Duplicate email in file: %s", row.Email)
			continue
		}
		role, err := access.ParseRole(row.Role)
		if err != nil {
			fail(row.Row, "Unknown role: %s", row.Role)
			continue
		}
		if _, err := parseOptionalDate(row.HireDate); err != nil {
			fail(row.Row, "Invalid hire date: %s", row.HireDate)
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			fail(row.Row, "Email already exists: %s", row.Email)
			continue
		}

		managerEmail := strings.ToLower(row.ManagerEmail)
		if managerEmail == "" && role == access.RoleEmployee {
			fail(row.Row, "Employees must have a manager")
			continue
		}
		if managerEmail != "" {
			if _, inFile := roleOf[managerEmail]; !inFile {
				if _, err := s.repo.User.GetByEmail(ctx, managerEmail); err != nil {
					fail(row.Row, "Manager not found: %s", row.ManagerEmail)
					continue
				}
			}
		}

		seen[key] = true
		roleOf[key] = role
		valid = append(valid, validatedRow{row: row, role: role, managerEmail: managerEmail})
	}

	if len(valid) == 0 {
		return resp, nil
	}

	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		created := make(map[string]string, len(valid))
		for _, vr := range valid {
			var managerID *string
			if vr.managerEmail != "" {
				if id, ok := created[vr.managerEmail]; ok {
					managerID = &id
				} else {
					mgr, err := txRepo.User.GetByEmail(ctx, vr.managerEmail)
					if err != nil {
						return fmt.Errorf("row %d: load manager: %w", vr.row.Row, err)
					}
					managerID = &mgr.UserID
				}
			}
			hireDate, _ := parseOptionalDate(vr.row.HireDate)

			user := &model.User{
				Email:           vr.row.Email,
				PasswordHash:    string(hash),
				FirstName:       vr.row.FirstName,
				LastName:        vr.row.LastName,
				Role:            vr.role,
				ManagerID:       managerID,
				IsActive:        true,
				HireDate:        hireDate,
				Department:      vr.row.Department,
				JobTitle:        vr.row.JobTitle,
				SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.CreatedBy(callerID)},
			}
			if err := txRepo.User.Create(ctx, user); err != nil {
				return fmt.Errorf("row %d: %w", vr.row.Row, err)
			}
			created[strings.ToLower(user.Email)] = user.UserID
		}
		return nil
	})
	if err != nil {
		s.logger.Error("user import rolled back", zap.Error(err))
		return nil, err
	}

	resp.Success = len(valid)
	s.logger.Info("users imported", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}
