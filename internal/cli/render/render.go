// Package render печатает посты ленты; рендерер выбирается по варианту поста.
package render

import (
	"fmt"
	"io"
	"strings"

	"HomeLedger/internal/cli/model"
)

// Renderer выводит один пост.
type Renderer interface {
	Render(w io.Writer, p model.Post) error
}

// Plain выводит общие поля update-поста.
type Plain struct{}

// Progress выводит progress-пост с расширенными полями.
type Progress struct{}

// For выбирает рендерер для p.
func For(p model.Post) Renderer {
	switch p.Variant.(type) {
	case *model.Progress:
		return Progress{}
	case nil, *model.Update:
		return Plain{}
	}
	return Plain{}
}

// Post выводит p рендерером его варианта.
func Post(w io.Writer, p model.Post) error {
	return For(p).Render(w, p)
}

func header(w io.Writer, p model.Post) error {
	ts := "-"
	if !p.CreatedAt.IsZero() {
		ts = p.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	_, err := fmt.Fprintf(w, "[%s] %s by %s\n", p.ID, ts, p.UserID)
	return err
}

func attachments(w io.Writer, ids []string) error {
	for _, id := range ids {
		a := model.NewAttachment(id)
		if _, err := fmt.Fprintf(w, "  %-5s %s\n", a.Kind, a.Filename); err != nil {
			return err
		}
	}
	return nil
}

func (Plain) Render(w io.Writer, p model.Post) error {
	if err := header(w, p); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s\n", p.Description); err != nil {
		return err
	}
	return attachments(w, p.MediaIDs)
}

func (Progress) Render(w io.Writer, p model.Post) error {
	v, ok := p.Variant.(*model.Progress)
	if !ok {
		return fmt.Errorf("post %s is not a progress post", p.ID)
	}
	if err := header(w, p); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", v.Title)
	fmt.Fprintf(&b, "  %s\n", p.Description)
	if len(v.Skills) > 0 {
		fmt.Fprintf(&b, "  Skills: %s\n", strings.Join(v.Skills, ", "))
	}
	if len(v.Resources) > 0 {
		b.WriteString("  Resources:\n")
		for _, r := range v.Resources {
			fmt.Fprintf(&b, "    - %s (%s) %s\n", r.Name, r.Owner, r.Link)
		}
	}
	if v.Challenges != "" {
		fmt.Fprintf(&b, "  Challenges: %s\n", v.Challenges)
	}
	if v.NextGoal != "" {
		fmt.Fprintf(&b, "  Next goal: %s\n", v.NextGoal)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return attachments(w, p.MediaIDs)
}
