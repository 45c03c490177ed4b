package schema

import "testing"

func TestModelName(t *testing.T) {
	cases := map[string]string{
		"clients":   "Client",
		"jobs":      "Job",
		"tasks":     "Task",
		"job_sites": "JobSite",
		"notes":     "Note",
	}
	for table, want := range cases {
		if got := ModelName(table); got != want {
			t.Errorf("ModelName(%q) = %q, want %q", table, got, want)
		}
	}
}

func TestKebabName(t *testing.T) {
	cases := map[string]string{
		"clients":       "client",
		"job_sites":     "job-site",
		"activity_logs": "activity-log",
	}
	for table, want := range cases {
		if got := KebabName(table); got != want {
			t.Errorf("KebabName(%q) = %q, want %q", table, got, want)
		}
	}
}

func TestAssociationNameForFK(t *testing.T) {
	if got := AssociationNameForFK("client_id"); got != "client" {
		t.Errorf("AssociationNameForFK(client_id) = %q", got)
	}
	if got := AssociationNameForFK("parent_id"); got != "parent" {
		t.Errorf("AssociationNameForFK(parent_id) = %q", got)
	}
}

func TestFilesFor(t *testing.T) {
	fs := FilesFor("job_sites")
	if fs.Types != "job-site.ts" || fs.Active != "job-site-active.ts" || fs.Reactive != "job-site-reactive.ts" {
		t.Errorf("FilesFor(job_sites) = %+v", fs)
	}
}

func TestTableSchemaColumn(t *testing.T) {
	tbl := TableSchema{
		Name: "clients",
		Columns: []Column{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "character varying"},
		},
	}
	col, ok := tbl.Column("name")
	if !ok || col.Type != "character varying" {
		t.Errorf("Column(name) = %+v, %v", col, ok)
	}
	if tbl.HasColumn("missing") {
		t.Error("HasColumn(missing) = true")
	}
}
