package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	files := fstest.MapFS{
		"sql/0010_late.sql":   {Data: []byte("CREATE TABLE late (id INTEGER);")},
		"sql/0002_second.sql": {Data: []byte("CREATE TABLE second (id INTEGER);")},
		"sql/0001_first.sql":  {Data: []byte("CREATE TABLE first (id INTEGER);\nCREATE INDEX first_id ON first(id);")},
		"sql/README.md":       {Data: []byte("not a migration")},
		"sql/draft.sql":       {Data: []byte("CREATE TABLE draft (id INTEGER);")},
	}

	steps, err := loadMigrations(files, "sql")
	if err != nil {
		t.Fatalf("loadMigrations() unexpected error: %v", err)
	}

	got := make([]int, 0, len(steps))
	for _, step := range steps {
		got = append(got, step.version)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 10 {
		t.Fatalf("expected versions [1 2 10], got %v", got)
	}
	if len(steps[0].statements) != 2 {
		t.Fatalf("expected 2 statements in first migration, got %#v", steps[0].statements)
	}
}

func TestLoadMigrationsRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"sql/0001_a.sql": {Data: []byte("SELECT 1;")},
				"sql/001_b.sql":  {Data: []byte("SELECT 2;")},
			},
			want: "duplicate migration version 1",
		},
		{
			name: "comments only",
			files: fstest.MapFS{
				"sql/0001_empty.sql": {Data: []byte("-- nothing yet\n")},
			},
			want: "has no SQL statements",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrations(tt.files, "sql")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

type recordingMigrationTarget struct {
	applied map[int]struct{}
	ran     []string
	failOn  int
}

func (target *recordingMigrationTarget) ensureLedger(context.Context) error {
	return nil
}

func (target *recordingMigrationTarget) appliedVersions(context.Context) (map[int]struct{}, error) {
	return target.applied, nil
}

func (target *recordingMigrationTarget) apply(_ context.Context, step migration) error {
	if step.version == target.failOn {
		return errors.New("boom")
	}
	target.ran = append(target.ran, step.name)
	target.applied[step.version] = struct{}{}
	return nil
}

func TestRunMigrationsSkipsAppliedVersions(t *testing.T) {
	files := fstest.MapFS{
		"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
		"sql/0003_third.sql":  {Data: []byte("SELECT 3;")},
	}
	target := &recordingMigrationTarget{applied: map[int]struct{}{1: {}}}

	if err := runMigrations(context.Background(), target, files, "sql"); err != nil {
		t.Fatalf("runMigrations() unexpected error: %v", err)
	}
	if strings.Join(target.ran, ",") != "0002_second.sql,0003_third.sql" {
		t.Fatalf("unexpected applied migrations %v", target.ran)
	}

	target.ran = nil
	if err := runMigrations(context.Background(), target, files, "sql"); err != nil {
		t.Fatalf("second runMigrations() unexpected error: %v", err)
	}
	if len(target.ran) != 0 {
		t.Fatalf("expected no migrations on second run, got %v", target.ran)
	}
}

func TestRunMigrationsStopsAtFailingStep(t *testing.T) {
	files := fstest.MapFS{
		"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
		"sql/0003_third.sql":  {Data: []byte("SELECT 3;")},
	}
	target := &recordingMigrationTarget{applied: map[int]struct{}{}, failOn: 2}

	err := runMigrations(context.Background(), target, files, "sql")
	if err == nil || !strings.Contains(err.Error(), "0002_second.sql") {
		t.Fatalf("expected failure naming 0002_second.sql, got %v", err)
	}
	if strings.Join(target.ran, ",") != "0001_first.sql" {
		t.Fatalf("expected only the first migration to run, got %v", target.ran)
	}
}
