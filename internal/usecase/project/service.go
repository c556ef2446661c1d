// Package project flattens source records into index documents: it
// hydrates the relation graph, computes the derived fields, and encodes
// every designated text field through textenc.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

// Service builds index documents from source records.
type Service struct {
	src SourceLoader
}

// New creates a projector.
func New(src SourceLoader) *Service {
	return &Service{src: src}
}

// ProjectLevel builds the document for one level. A nil document with a
// nil error means the source row is gone and there is nothing to index.
func (s *Service) ProjectLevel(ctx context.Context, id int64) (*domain.LevelDoc, error) {
	lvl, err := s.src.LoadLevel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project level %d: %w", id, err)
	}
	if lvl == nil {
		return nil, nil
	}

	doc := &domain.LevelDoc{
		ID:           lvl.ID,
		Song:         textenc.ToSafe(lvl.Song),
		Artist:       textenc.ToSafe(lvl.Artist),
		Creator:      textenc.ToSafe(lvl.Creator),
		Team:         textenc.ToSafe(lvl.Team),
		DiffID:       lvl.DiffID,
		DiffName:     textenc.ToSafe(lvl.Difficulty.Name),
		DiffSort:     lvl.Difficulty.SortOrder,
		BaseScore:    lvl.BaseScore,
		DLLink:       textenc.ToSafe(lvl.DLLink),
		WorkshopLink: textenc.ToSafe(lvl.WorkshopLink),
		VideoLink:    textenc.ToSafe(lvl.VideoLink),
		IsDeleted:    lvl.IsDeleted,
		IsHidden:     lvl.IsHidden,
		IsAnnounced:  lvl.IsAnnounced,
		IsCurated:    lvl.Curation != nil,
		Clears:       lvl.Clears,
		UpdatedAt:    lvl.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if lvl.Curation != nil {
		doc.CurationType = textenc.ToSafe(lvl.Curation.TypeName)
	}

	for _, a := range lvl.Aliases {
		doc.Aliases = append(doc.Aliases, domain.AliasDoc{
			Field: a.Field,
			Alias: textenc.ToSafe(a.Alias),
		})
	}
	for _, t := range lvl.Tags {
		doc.Tags = append(doc.Tags, domain.TagDoc{ID: t.ID, Name: textenc.ToSafe(t.Name)})
	}
	for _, c := range lvl.Credits {
		cd := domain.CreditDoc{
			Name: textenc.ToSafe(c.Name),
			Role: c.Role,
		}
		for _, a := range c.Aliases {
			cd.Aliases = append(cd.Aliases, textenc.ToSafe(a))
		}
		doc.Credits = append(doc.Credits, cd)

		// One pair per name and per alias: a role-scoped query matches
		// inside a single credit element, never across two credits.
		doc.CreditPairs = append(doc.CreditPairs, domain.CreditPair(c.Role, cd.Name))
		for _, a := range cd.Aliases {
			doc.CreditPairs = append(doc.CreditPairs, domain.CreditPair(c.Role, a))
		}
	}
	if lvl.LatestClear != nil {
		doc.LatestClear = &domain.ClearDoc{
			ID:       lvl.LatestClear.ID,
			Player:   textenc.ToSafe(lvl.LatestClear.Player.Name),
			Uploaded: lvl.LatestClear.UploadedAt.UTC().Format(time.RFC3339),
		}
	}
	return doc, nil
}

// ProjectPass builds the document for one pass. Same nil/nil convention
// as ProjectLevel.
func (s *Service) ProjectPass(ctx context.Context, id int64) (*domain.PassDoc, error) {
	p, err := s.src.LoadPass(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project pass %d: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}

	return &domain.PassDoc{
		ID:            p.ID,
		LevelID:       p.LevelID,
		PlayerID:      p.PlayerID,
		Player:        textenc.ToSafe(p.Player.Name),
		Country:       p.Player.Country,
		Song:          textenc.ToSafe(p.LevelSong),
		Artist:        textenc.ToSafe(p.LevelArtist),
		Speed:         p.Speed,
		Accuracy:      p.Accuracy,
		ScoreV2:       p.ScoreV2,
		VideoTitle:    textenc.ToSafe(p.VideoTitle),
		VideoLink:     textenc.ToSafe(p.VideoLink),
		Is12K:         p.Is12K,
		Is16K:         p.Is16K,
		IsNoHold:      p.IsNoHold,
		IsWorldsFirst: p.IsWorldsFirst,
		IsDeleted:     p.IsDeleted,
		IsHidden:      p.IsHidden,
		UploadedAt:    p.UploadedAt.UTC().Format(time.RFC3339),
	}, nil
}
