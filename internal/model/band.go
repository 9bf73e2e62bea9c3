package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Genre is the musical genre of a band. The zero value means "unset".
type Genre string

const (
	GenreRock            Genre = "ROCK"
	GenrePsychedelicRock Genre = "PSYCHEDELIC_ROCK"
	GenreHipHop          Genre = "HIP_HOP"
	GenrePop             Genre = "POP"
	GenrePostPunk        Genre = "POST_PUNK"
)

// ValidGenres lists the accepted genre values.
var ValidGenres = map[Genre]bool{
	GenreRock:            true,
	GenrePsychedelicRock: true,
	GenreHipHop:          true,
	GenrePop:             true,
	GenrePostPunk:        true,
}

// Coordinates locate a band on the (fictional) map.
type Coordinates struct {
	X int64   `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Album is a band's best album.
type Album struct {
	Name   string `json:"name" yaml:"name"`
	Length int64  `json:"length" yaml:"length"`
}

// Band is one record of the collection.
type Band struct {
	ID                   int64       `json:"id" yaml:"id,omitempty"`
	Name                 string      `json:"name" yaml:"name"`
	Coordinates          Coordinates `json:"coordinates" yaml:"coordinates"`
	CreationDate         time.Time   `json:"creation_date" yaml:"creation_date,omitempty"`
	NumberOfParticipants int64       `json:"number_of_participants" yaml:"number_of_participants"`
	AlbumsCount          int64       `json:"albums_count" yaml:"albums_count"`
	Genre                Genre       `json:"genre,omitempty" yaml:"genre,omitempty"`
	BestAlbum            *Album      `json:"best_album,omitempty" yaml:"best_album,omitempty"`
}

// Clone returns a deep copy. BestAlbum is copied, never shared.
func (b Band) Clone() Band {
	out := b
	if b.BestAlbum != nil {
		album := *b.BestAlbum
		out.BestAlbum = &album
	}
	return out
}

// Normalize trims and NFC-normalises the band's string fields.
func (b Band) Normalize() Band {
	out := b.Clone()
	out.Name = norm.NFC.String(strings.TrimSpace(out.Name))
	if out.BestAlbum != nil {
		out.BestAlbum.Name = norm.NFC.String(strings.TrimSpace(out.BestAlbum.Name))
	}
	return out
}
