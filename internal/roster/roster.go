package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

// Header is the first line written by Export.
const Header = "id,name,pin,role,xp"

type Row struct {
	ID   string
	Name string
	PIN  string
	Role model.Role
}

type ImportResult struct {
	Rows    []Row
	Skipped int
}

// Parse reads id,name,pin,role lines. A leading header line is dropped,
// lines with fewer than four fields or a blank id, name or pin are skipped,
// and unrecognised roles become Nurse.
func Parse(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var result ImportResult
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped++
				first = false
				continue
			}
			return ImportResult{}, err
		}
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		row, ok := parseRecord(record)
		if !ok {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "id")
}

func parseRecord(record []string) (Row, bool) {
	if len(record) < 4 {
		return Row{}, false
	}
	row := Row{
		ID:   strings.TrimSpace(record[0]),
		Name: strings.TrimSpace(strings.Trim(record[1], `"`)),
		PIN:  strings.TrimSpace(record[2]),
	}
	if row.ID == "" || row.Name == "" || row.PIN == "" {
		return Row{}, false
	}
	if !model.ValidPIN(row.PIN) {
		return Row{}, false
	}
	role, ok := model.ParseRole(strings.TrimSpace(record[3]))
	if !ok {
		role = model.RoleNurse
	}
	row.Role = role
	return row, true
}

// Export writes users as id,"name",pin,role,xp. The name is always quoted;
// other fields are quoted only when they would not read back as one field.
func Export(w io.Writer, users []model.User) error {
	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return err
	}
	for _, user := range users {
		line := fmt.Sprintf("%s,%s,%s,%s,%s\n",
			field(user.ID),
			quote(user.Name),
			field(user.PIN),
			field(string(user.Role)),
			strconv.Itoa(user.XP),
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func field(value string) string {
	if strings.ContainsAny(value, ",\"\r\n") || strings.HasPrefix(value, " ") {
		return quote(value)
	}
	return value
}

type MergeResult struct {
	Created []model.User
	Updated []model.User
}

// Merge applies rows onto existing users. Known ids get name, pin and role
// replaced with avatar and progress untouched; unknown ids become new users
// with zero progress and a generated avatar. Later rows for the same id win.
func Merge(existing []model.User, rows []Row) MergeResult {
	byID := make(map[string]model.User, len(existing))
	for _, user := range existing {
		byID[user.ID] = user
	}

	var order []string
	touched := make(map[string]model.User)
	created := make(map[string]bool)
	for _, row := range rows {
		user, seen := touched[row.ID]
		if !seen {
			if current, ok := byID[row.ID]; ok {
				user = current.Clone()
			} else {
				user = model.User{
					ID:               row.ID,
					Badges:           []string{},
					CompletedCourses: []string{},
					QuizAttempts:     []model.QuizAttempt{},
				}
				created[row.ID] = true
			}
			order = append(order, row.ID)
		}
		if created[row.ID] {
			user.Avatar = model.AvatarURL(row.Name)
		}
		user.Name = row.Name
		user.PIN = row.PIN
		user.Role = row.Role
		touched[row.ID] = user
	}

	var result MergeResult
	for _, id := range order {
		if created[id] {
			result.Created = append(result.Created, touched[id])
		} else {
			result.Updated = append(result.Updated, touched[id])
		}
	}
	return result
}
