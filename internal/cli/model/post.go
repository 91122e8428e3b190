package model

import (
	"strings"
	"time"
)

// PostType различает варианты поста в API.
type PostType int

const (
	PostTypeUpdate   PostType = 0
	PostTypeProgress PostType = 1
)

// Variant - закрытый набор вариантов поста: *Update или *Progress.
type Variant interface {
	PostType() PostType
	variant()
}

// Update - обычный пост-статус без полей сверх общих.
type Update struct{}

func (*Update) PostType() PostType { return PostTypeUpdate }
func (*Update) variant()           {}

// Progress - расширенный пост с навыками, ресурсами, трудностями и следующей целью.
type Progress struct {
	Title      string
	Skills     []string
	Resources  []Resource
	Challenges string
	NextGoal   string
}

func (*Progress) PostType() PostType { return PostTypeProgress }
func (*Progress) variant()           {}

// Post - одна запись ленты.
type Post struct {
	ID          string
	UserID      string
	Description string
	MediaIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Variant     Variant
}

// Type возвращает тип поста; пост без варианта считается update.
func (p Post) Type() PostType {
	if p.Variant == nil {
		return PostTypeUpdate
	}
	return p.Variant.PostType()
}

// Resource - учебный ресурс из progress-поста.
type Resource struct {
	Name  string
	Owner string
	Link  string
}

const resourceSep = "+"

// String кодирует ресурс как "name+owner+link".
func (r Resource) String() string {
	return r.Name + resourceSep + r.Owner + resourceSep + r.Link
}

// ParseResource разбирает строку "name+owner+link". Недостающие части пустые;
// последующие '+' остаются в link.
func ParseResource(s string) Resource {
	parts := strings.SplitN(s, resourceSep, 3)
	var r Resource
	if len(parts) > 0 {
		r.Name = parts[0]
	}
	if len(parts) > 1 {
		r.Owner = parts[1]
	}
	if len(parts) > 2 {
		r.Link = parts[2]
	}
	return r
}

// JoinSkills сериализует навыки в поле через запятую.
func JoinSkills(skills []string) string {
	return strings.Join(skills, ",")
}

// SplitSkills разбирает поле через запятую; пустой ввод - нет навыков.
func SplitSkills(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
