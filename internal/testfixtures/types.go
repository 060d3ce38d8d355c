// Package testfixtures provides annotated types used for testing optikgen.
package testfixtures

// User exercises field tags: a name override, a validate rule, a skipped
// field, and an unexported field. DisplayName is a getter-only property;
// SetNickname has no matching getter.
//
//optik:class User
type User struct {
	ID       int64 `optik:"id"`
	Username string
	Email    string `validate:"email"`
	Secret   string `optik:"-"`
	notes    string
}

func (u *User) DisplayName() string { return u.Username }

func (u *User) SetNickname(v string) { u.notes = v }

// Meta exercises the class name override and a getter/setter method pair.
//
//optik:class Metadata
type Meta struct {
	CreatedAt int64
	score     float64
}

func (m *Meta) Score() float64 { return m.score }

func (m *Meta) SetScore(v float64) { m.score = v }

// Post embeds a marked struct type, which scans as a base.
//
//optik:class
type Post struct {
	Meta
	Title     string
	Published bool
	AuthorID  int64
	Draft     string `optik:"-"`
}

// Entity exercises interface classes: methods become getter properties.
//
//optik:class
type Entity interface {
	Kind() string
}

// Document embeds a marked interface type, which scans as a base.
//
//optik:class
type Document struct {
	Entity
	Title string
}

// Box is generic and cannot be declared as a class; scanning it warns.
//
//optik:class
type Box[T any] struct {
	Value T
}
