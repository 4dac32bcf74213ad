package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/banshee-data/pitwall/internal/render"
	"github.com/banshee-data/pitwall/internal/views"
)

// commandAliases maps the short terminal names onto router commands.
var commandAliases = map[string]string{
	"add":    views.CommandAdd,
	"points": views.CommandPoints,
	"swap":   views.CommandSwap,
	"delete": views.CommandDelete,
	"recalc": views.CommandRecalc,
}

func sectionSlugs() string {
	var slugs []string
	for _, s := range views.Sections() {
		if s.HasQuery() {
			slugs = append(slugs, s.Slug())
		}
	}
	return strings.Join(slugs, ", ")
}

// runCommand executes one terminal subcommand and writes its output.
func runCommand(ctx context.Context, router *views.Router, args []string, out io.Writer) error {
	switch args[0] {
	case "show":
		return runShow(ctx, router, args[1:], out)
	case "results":
		return runResults(ctx, router, args[1:], out)
	case "admin":
		return runAdmin(ctx, router, args[1:], out)
	}
	return fmt.Errorf("unknown command %q (see pitwall -h)", args[0])
}

func runShow(ctx context.Context, router *views.Router, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pitwall show <%s>", sectionSlugs())
	}
	section, err := views.ParseSection(args[0])
	if err != nil {
		return err
	}
	if !section.HasQuery() {
		return fmt.Errorf("section %q has no table; use the results or admin command", section.Slug())
	}
	view := router.Show(ctx, section, true)
	render.View(out, view)
	return view.Err
}

func runResults(ctx context.Context, router *views.Router, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: pitwall results <add|points|swap|delete|recalc> [ids...]")
	}
	command, ok := commandAliases[args[0]]
	if !ok {
		if _, known := views.CommandFields(args[0]); !known {
			return fmt.Errorf("unknown results command %q", args[0])
		}
		command = args[0]
	}
	form, err := views.FormFromArgs(command, args[1:])
	if err != nil {
		return err
	}
	outcome, err := router.Execute(ctx, command, form)
	if err != nil {
		return err
	}
	render.Outcome(out, outcome)
	return outcome.Err
}

func runAdmin(ctx context.Context, router *views.Router, args []string, out io.Writer) error {
	if len(args) != 4 || args[0] != "create-user" {
		return errors.New("usage: pitwall admin create-user <name> <password> <privilege>")
	}
	req, err := views.ParseUserRequest(url.Values{
		"username":  {args[1]},
		"password":  {args[2]},
		"privilege": {args[3]},
	})
	if err != nil {
		return err
	}
	outcome := router.CreateUser(ctx, req)
	render.Outcome(out, outcome)
	return outcome.Err
}
