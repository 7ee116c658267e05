package roster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

func TestParseQuotedName(t *testing.T) {
	result, err := Parse(strings.NewReader(`99999,"John Doe",1234,Nurse`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.ID != "99999" || row.Name != "John Doe" || row.PIN != "1234" || row.Role != model.RoleNurse {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestParseSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		"id,name,pin,role",
		"11111,Ann Lee,1111,Educator",
		"22222,Short Line,2222",
		"",
		"33333,Bob,3333,Janitor",
		",No Id,4444,Nurse",
		"55555,Bad Pin,55,Nurse",
	}, "\n")
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(result.Rows), result.Rows)
	}
	for _, row := range result.Rows {
		if row.ID == "22222" {
			t.Fatalf("3-field line was imported")
		}
	}
	if result.Rows[0].Role != model.RoleEducator {
		t.Fatalf("expected Educator, got %s", result.Rows[0].Role)
	}
	if result.Rows[1].Role != model.RoleNurse {
		t.Fatalf("expected unknown role to default to Nurse, got %s", result.Rows[1].Role)
	}
	if result.Skipped != 3 {
		t.Fatalf("expected 3 skipped, got %d", result.Skipped)
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	users := []model.User{
		{ID: "12345", Name: "Sarah Jenkins", PIN: "1234", Role: model.RoleNurse, XP: 1250},
		{ID: "admin", Name: `Dr. "A" Wong`, PIN: "1234", Role: model.RoleEducator},
	}
	if err := Export(&buf, users); err != nil {
		t.Fatalf("export error: %v", err)
	}
	want := "id,name,pin,role,xp\n" +
		"12345,\"Sarah Jenkins\",1234,Nurse,1250\n" +
		"admin,\"Dr. \"\"A\"\" Wong\",1234,Educator,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}
}

func TestExportThenParse(t *testing.T) {
	var buf bytes.Buffer
	users := []model.User{{ID: "54321", Name: "Mike Ross", PIN: "1234", Role: model.RoleNurse, XP: 850}}
	if err := Export(&buf, users); err != nil {
		t.Fatalf("export error: %v", err)
	}
	result, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Name != "Mike Ross" {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}
}

func TestExportQuotesAwkwardIDs(t *testing.T) {
	var buf bytes.Buffer
	users := []model.User{
		{ID: "ward,7", Name: "Ana Lim", PIN: "1234", Role: model.RoleNurse, XP: 50},
		{ID: `n"8`, Name: "Ben Ode", PIN: "4321", Role: model.RoleNurse},
	}
	if err := Export(&buf, users); err != nil {
		t.Fatalf("export error: %v", err)
	}
	want := "id,name,pin,role,xp\n" +
		"\"ward,7\",\"Ana Lim\",1234,Nurse,50\n" +
		"\"n\"\"8\",\"Ben Ode\",4321,Nurse,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}
	result, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(result.Rows) != 2 || result.Skipped != 0 {
		t.Fatalf("expected both rows back, got %+v", result)
	}
	if result.Rows[0].ID != "ward,7" || result.Rows[1].ID != `n"8` || result.Rows[1].PIN != "4321" {
		t.Fatalf("ids did not round trip: %+v", result.Rows)
	}
}

func TestMerge(t *testing.T) {
	existing := []model.User{{
		ID: "12345", Name: "Sarah Jenkins", PIN: "1234", Role: model.RoleNurse,
		Avatar: "custom", XP: 1250, Badges: []string{"b1"}, CompletedCourses: []string{"c1"},
	}}
	rows := []Row{
		{ID: "12345", Name: "Sarah Jenkins", PIN: "4321", Role: model.RoleEducator},
		{ID: "99999", Name: "John Doe", PIN: "1234", Role: model.RoleNurse},
	}
	result := Merge(existing, rows)
	if len(result.Updated) != 1 || len(result.Created) != 1 {
		t.Fatalf("expected 1 updated and 1 created, got %+v", result)
	}
	updated := result.Updated[0]
	if updated.PIN != "4321" || updated.Role != model.RoleEducator || updated.XP != 1250 || updated.Avatar != "custom" {
		t.Fatalf("unexpected merge of existing user: %+v", updated)
	}
	if len(updated.Badges) != 1 || len(updated.CompletedCourses) != 1 {
		t.Fatalf("merge must keep progress: %+v", updated)
	}
	created := result.Created[0]
	if created.XP != 0 || created.Streak != 0 || len(created.Badges) != 0 {
		t.Fatalf("expected zero progress for new user: %+v", created)
	}
	if created.Avatar != "https://ui-avatars.com/api/?name=John%20Doe&background=random" {
		t.Fatalf("unexpected avatar: %s", created.Avatar)
	}
	if existing[0].PIN != "1234" {
		t.Fatalf("merge mutated the input")
	}
}
