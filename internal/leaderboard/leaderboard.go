// Package leaderboard ranks managers by cumulative points.
package leaderboard

import (
	"context"
	"sort"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Entry struct {
	Rank             int    `json:"rank"`
	ManagerID        uint   `json:"manager_id"`
	SquadName        string `json:"squad_name"`
	GameweekPoints   int    `json:"gameweek_points"`
	CumulativePoints int    `json:"cumulative_points"`
}

type Page struct {
	GameweekID uint    `json:"gameweek_id,omitempty"`
	GwNumber   int     `json:"gw_number,omitempty"`
	Entries    []Entry `json:"entries"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Normalize clamps paging input: page starts at 1 and size falls in
// [1, MaxPageSize], with 0 meaning DefaultPageSize.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size == 0:
		size = DefaultPageSize
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}

// Leaderboard ranks every manager with points up to the reference
// gameweek. Ties keep ascending manager id order.
func (s *Service) Leaderboard(ctx context.Context, page, size int) (*Page, error) {
	page, size = Normalize(page, size)
	result := &Page{Entries: []Entry{}, Page: page, PageSize: size}

	ref, err := gameweek.Reference(ctx, s.store)
	if err != nil {
		return nil, apperror.Internal("Failed to load leaderboard", err)
	}
	if ref == nil {
		return result, nil
	}
	result.GameweekID, result.GwNumber = ref.ID, ref.Number

	states, err := s.store.ListManagerStates(ctx, ref.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load leaderboard", err)
	}
	cumulative, err := s.store.SumManagerPoints(ctx, ref.Number)
	if err != nil {
		return nil, apperror.Internal("Failed to load leaderboard", err)
	}

	gwPoints := make(map[uint]int, len(states))
	ids := make([]uint, 0, len(cumulative))
	for _, st := range states {
		gwPoints[st.ManagerID] = st.TotalGWPoints
		if _, ok := cumulative[st.ManagerID]; !ok {
			ids = append(ids, st.ManagerID)
		}
	}
	for id := range cumulative {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	managers, err := s.store.ListManagersByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load leaderboard", err)
	}
	names := make(map[uint]string, len(managers))
	for _, m := range managers {
		names[m.ID] = m.SquadName
	}

	entries := make([]Entry, len(ids))
	for i, id := range ids {
		total, ok := cumulative[id]
		if !ok {
			total = gwPoints[id]
		}
		entries[i] = Entry{
			ManagerID:        id,
			SquadName:        names[id],
			GameweekPoints:   gwPoints[id],
			CumulativePoints: total,
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CumulativePoints > entries[j].CumulativePoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	result.Total = len(entries)
	start, end, ok := storage.PageBounds(page, size, len(entries))
	if !ok {
		return result, nil
	}
	result.Entries = entries[start:end]
	return result, nil
}
