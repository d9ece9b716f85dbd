package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/microfix/dashboard/internal/collection"
)

var errUsage = errors.New("usage")

type cli struct {
	store        *collection.Store
	defaultImage string
	out          io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list", "ls":
		return c.list(rest)
	case "tags":
		return c.tags()
	case "add":
		return c.add(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	case "rm", "delete":
		return c.remove(ctx, rest)
	case "export":
		return c.export(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) list(args []string) error {
	fs := newFlagSet("list")
	tag := fs.String("tag", "", "only show cards with this tag")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items := c.store.FilterByTag(*tag)
	if len(items) == 0 {
		fmt.Fprintln(c.out, dimStyle.Render("No links yet."))
		return nil
	}
	fmt.Fprintln(c.out, renderCards(items, c.defaultImage))
	return nil
}

func (c *cli) tags() error {
	for _, t := range c.store.Tags() {
		fmt.Fprintln(c.out, tagStyle.Render(t))
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	f := bindItemFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	candidate := collection.Candidate{
		Title:       strings.TrimSpace(*f.title),
		URL:         strings.TrimSpace(*f.url),
		Description: *f.description,
		ImageURL:    strings.TrimSpace(*f.image),
		Tags:        splitTags(*f.tags),
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	created, err := c.store.Add(ctx, candidate)
	if err != nil {
		return fmt.Errorf("adding link: %w", err)
	}
	fmt.Fprintln(c.out, renderCard(created, c.defaultImage))
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	id, rest := splitID(args)

	fs := newFlagSet("edit")
	f := bindItemFlags(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return fmt.Errorf("%w: edit needs an id", errUsage)
	}

	patch := f.patch(fs)
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to change", errUsage)
	}
	if patch.Title != nil && *patch.Title == "" {
		return &collection.ValidationError{Field: "title"}
	}
	if patch.URL != nil && *patch.URL == "" {
		return &collection.ValidationError{Field: "url"}
	}

	updated, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("updating link %s: %w", id, err)
	}
	fmt.Fprintln(c.out, renderCard(updated, c.defaultImage))
	return nil
}

func (c *cli) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: rm needs exactly one id", errUsage)
	}
	if err := c.store.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting link %s: %w", args[0], err)
	}
	fmt.Fprintln(c.out, dimStyle.Render("Deleted "+args[0]))
	return nil
}

func (c *cli) export(args []string) error {
	fs := newFlagSet("export")
	path := fs.String("o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := c.out
	if *path != "" {
		f, err := os.Create(*path)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.store.List()); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

type itemFlags struct {
	title, url, description, image, tags *string
}

func bindItemFlags(fs *flag.FlagSet) itemFlags {
	return itemFlags{
		title:       fs.String("title", "", "card title"),
		url:         fs.String("url", "", "link target"),
		description: fs.String("description", "", "short description"),
		image:       fs.String("image", "", "image URL"),
		tags:        fs.String("tags", "", "comma separated tags"),
	}
}

// patch includes only the flags given on the command line, so an explicit
// empty value clears a field while an absent flag leaves it alone.
func (f itemFlags) patch(fs *flag.FlagSet) collection.Patch {
	var p collection.Patch
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			v := strings.TrimSpace(*f.title)
			p.Title = &v
		case "url":
			v := strings.TrimSpace(*f.url)
			p.URL = &v
		case "description":
			p.Description = f.description
		case "image":
			v := strings.TrimSpace(*f.image)
			p.ImageURL = &v
		case "tags":
			tags := splitTags(*f.tags)
			p.Tags = &tags
		}
	})
	return p
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// splitID lets the id come before the flags ("edit <id> -title x").
func splitID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func splitTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
