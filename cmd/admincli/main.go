// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

// Command admincli is a terminal client for the course-catalog admin API.
// It exists for operators and for exercising a deployment end to end without
// the web UI.
//
// Usage:
//
//	admincli [flags] <command> [args]
//
// Commands:
//
//	login              verify credentials and print the signed-in identity
//	diag               print collected diagnostic events as JSON
//	courses            list courses (honors -status, -search, -page)
//	show <id>          print one course as JSON
//	publish <id>       save-gate and publish a course
//	archive <id>       save-gate and archive a course
//	clone <src> <dst>  replicate course src into course dst as a draft
//	delete <id>        delete a course (prompts for confirmation text)
//
// Credentials come from ASHARVI_ADMIN_EMAIL / ASHARVI_ADMIN_PASSWORD or the
// -email / -password flags. With -diag the collected diagnostic events are
// printed as JSON on exit.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/asharvi/admin-core/internal/api"
	"github.com/asharvi/admin-core/internal/catalog"
	"github.com/asharvi/admin-core/internal/diagnostics"
	"github.com/asharvi/admin-core/internal/editor"
	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/platform/transport"
	"github.com/asharvi/admin-core/internal/upload"
)

// app bundles the wired clients a subcommand needs.
type app struct {
	cfg     *config.Config
	env     config.Environment
	client  *api.Client
	catalog *catalog.Client
	sink    *diagnostics.Sink
	log     *slog.Logger

	token struct {
		value string
	}
}

func main() {
	email := flag.String("email", os.Getenv("ASHARVI_ADMIN_EMAIL"), "admin account email")
	password := flag.String("password", os.Getenv("ASHARVI_ADMIN_PASSWORD"), "admin account password")
	environment := flag.String("env", "", "target environment: staging or production")
	status := flag.String("status", "", "filter courses by status")
	search := flag.String("search", "", "filter courses by title or description")
	page := flag.Int("page", 1, "listing page")
	diag := flag.Bool("diag", false, "print diagnostic events as JSON on exit")
	flag.Parse()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	level := slog.LevelWarn
	if os.Getenv("ASHARVI_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// ── 2. Environment ─────────────────────────────────────────────────────
	// A missing .env is not an error; shell environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalIf(err, "load configuration")

	env := cfg.DefaultEnvironment()
	if *environment != "" {
		env = config.NormalizeEnvironment(*environment)
	}

	// ── 3. Client Wiring ───────────────────────────────────────────────────
	a := &app{cfg: cfg, env: env, sink: diagnostics.NewSink(), log: log}
	a.client = api.New(api.Config{
		BaseURL:     cfg.BaseURL(env),
		Environment: env,
		AuthPaths:   cfg.AuthPaths(),
		Token:       func() string { return a.token.value },
		OnSession:   func(token string) { a.token.value = token },
		Observe:     diagnostics.APIObserver(a.sink),
	}, transport.New(log, transport.WithPacing(cfg.RequestsPerSecond)), log)
	a.catalog = catalog.NewClient(a.client)

	if *email == "" || *password == "" {
		fatalIf(fmt.Errorf("missing credentials"), "set ASHARVI_ADMIN_EMAIL and ASHARVI_ADMIN_PASSWORD")
	}

	ctx := context.Background()
	_, err = a.client.Login(ctx, *email, *password)
	fatalIf(err, "login")

	// ── 4. Command Dispatch ────────────────────────────────────────────────
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "login":
		err = a.whoami(ctx)
	case "diag":
		err = a.printDiagnostics()
	case "courses":
		err = a.listCourses(ctx, catalog.ListOptions{
			Page:   *page,
			Status: *status,
			Search: *search,
		})
	case "show":
		err = a.showCourse(ctx, arg(args, 1, "course id"))
	case "publish":
		err = a.transition(ctx, arg(args, 1, "course id"), (*editor.Session).Publish)
	case "archive":
		err = a.transition(ctx, arg(args, 1, "course id"), (*editor.Session).Archive)
	case "clone":
		err = a.clone(ctx, arg(args, 1, "source course id"), arg(args, 2, "target course id"))
	case "delete":
		err = a.deleteCourse(ctx, arg(args, 1, "course id"))
	default:
		fatalIf(fmt.Errorf("unknown command %q", args[0]), "dispatch")
	}

	if err != nil {
		notice := apperr.Display(err, "course")
		fmt.Fprintf(os.Stderr, "%s: %s\n", notice.Title, notice.Description)
		if notice.SuggestedAction != "" {
			fmt.Fprintln(os.Stderr, notice.SuggestedAction)
		}
		os.Exit(1)
	}

	if *diag {
		fatalIf(a.printDiagnostics(), "export diagnostics")
	}
}

// # Commands

// whoami confirms the session by resolving the signed-in identity.
func (a *app) whoami(ctx context.Context) error {
	identity, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (roles: %s)\n", identity.UserID, strings.Join(identity.Roles, ", "))
	return nil
}

func (a *app) printDiagnostics() error {
	out, err := a.sink.ExportJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) listCourses(ctx context.Context, opts catalog.ListOptions) error {
	list, err := a.catalog.ListCourses(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%d course(s)\n", list.Total)
	for _, course := range list.Items {
		fmt.Printf("%-36s  %-10s  %s\n", course.ID, course.Status, course.Title)
	}
	return nil
}

func (a *app) showCourse(ctx context.Context, id string) error {
	course, err := a.catalog.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// transition loads an edit session for the course and runs a status change
// through it, so the save gate and diagnostics apply exactly as in the UI.
func (a *app) transition(ctx context.Context, id string, action func(*editor.Session, context.Context) error) error {
	session := a.session(id)
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		return err
	}
	if err := action(session, ctx); err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", session.Working().Slug, session.Working().Status)
	return nil
}

func (a *app) clone(ctx context.Context, sourceID, targetID string) error {
	source, err := a.catalog.GetCourse(ctx, sourceID)
	if err != nil {
		return err
	}

	session := a.session(targetID)
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		return err
	}
	session.ReplicateFrom(source)
	if err := session.Save(ctx); err != nil {
		return err
	}
	fmt.Printf("replicated %s into %s (slug %s)\n", source.Slug, targetID, session.Working().Slug)
	return nil
}

func (a *app) deleteCourse(ctx context.Context, id string) error {
	session := a.session(id)
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		return err
	}

	prompt := "Type \"yes\" to confirm deletion: "
	if a.env == config.Production {
		prompt = fmt.Sprintf("Type the course slug (%s) to confirm deletion: ", session.Working().Slug)
	}
	fmt.Print(prompt)

	reader := bufio.NewReader(os.Stdin)
	confirmation, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	if err := session.Delete(ctx, strings.TrimSpace(confirmation)); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

// # Wiring Helpers

func (a *app) session(courseID string) *editor.Session {
	uploader := upload.New(upload.Config{
		BaseURL:        a.cfg.BaseURL(a.env),
		Environment:    a.env,
		ThumbnailPath:  a.cfg.ThumbnailUploadPath,
		AttachmentPath: a.cfg.AttachmentUploadPath,
		Token:          func() string { return a.token.value },
		Refresher:      a.client,
	}, a.log)

	return editor.NewSession(editor.Config{
		CourseID:    courseID,
		Environment: a.env,
		Catalog:     a.catalog,
		Uploader:    uploader,
		Sink:        a.sink,
		Log:         a.log,
	})
}

func arg(args []string, index int, name string) string {
	if index >= len(args) {
		fmt.Fprintf(os.Stderr, "missing argument: %s\n", name)
		os.Exit(2)
	}
	return args[index]
}

func fatalIf(err error, context string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", context, err)
		os.Exit(1)
	}
}
