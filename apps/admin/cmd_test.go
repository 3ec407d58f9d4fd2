package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/trezcool/matibabu/core/report"
	emailsvc "github.com/trezcool/matibabu/services/email"
	"github.com/trezcool/matibabu/tests"
)

func setup(t *testing.T, reports ...report.Report) (*commandLine, *testutil.StubEngine) {
	t.Helper()
	conf := testutil.NewConfig()
	repo := testutil.NewReportRepo(reports...)
	engine := &testutil.StubEngine{PDF: []byte("%PDF-1.4 test")}
	svc := report.NewService(repo, engine, emailsvc.NewConsoleServiceMock(conf), testutil.NopLogger{}, conf)

	return &commandLine{reportSvc: svc}, engine
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "report", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_render(t *testing.T) {
	rep := testutil.NewReportFixture()
	cli, engine := setup(t, rep)

	type written struct {
		path string
		data []byte
	}
	var got *written
	writeFileFunc = func(name string, data []byte, perm fs.FileMode) error {
		got = &written{path: name, data: data}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no id", args: []string{"render"}, wantErr: errHelp},
		{name: "unknown report", args: []string{"render", "-id", "999"}, wantErr: report.ErrNotFound},
		{name: "default output path", args: []string{"render", "-id", "1"}},
		{name: "explicit output path", args: []string{"render", "-id", "1", "-out", "/tmp/informe.pdf"}},
		{name: "oficio", args: []string{"render", "-id", "1", "-size", "oficio"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			got = nil

			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if got == nil {
				t.Fatal("no file written")
			}
			if string(got.data) != "%PDF-1.4 test" {
				t.Errorf("written data = %q", got.data)
			}

			switch tt.name {
			case "default output path":
				if want := report.Filename(rep); got.path != want {
					t.Errorf("path = %q, want %q", got.path, want)
				}
			case "explicit output path":
				if got.path != "/tmp/informe.pdf" {
					t.Errorf("path = %q, want /tmp/informe.pdf", got.path)
				}
			case "oficio":
				if engine.LastOpts.Format != "" || engine.LastOpts.WidthIn == 0 {
					t.Errorf("oficio not forwarded as explicit dimensions: %+v", engine.LastOpts)
				}
			}
		})
	}
}
