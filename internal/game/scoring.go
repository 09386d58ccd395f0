package game

import (
	"sort"

	"github.com/robalobadob/boggle/apps/go-server/internal/words"
)

// Tally scores a room.
//
// A word listed by more than one player is a duplicate: it scores for nobody
// and appears once in Duplicates, in the order it is first met walking
// players in join order. Each player's remaining (unique) words are scored
// with words.Score. Rows are ordered by score descending; ties keep join
// order because the sort is stable.
func Tally(r *Room) Results {
	freq := make(map[string]int)
	var order []string
	for _, p := range r.Players {
		seen := make(map[string]struct{})
		for _, w := range r.Submissions[words.Fold(p)] {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			if freq[w] == 0 {
				order = append(order, w)
			}
			freq[w]++
		}
	}

	duplicates := []string{}
	for _, w := range order {
		if freq[w] > 1 {
			duplicates = append(duplicates, w)
		}
	}

	players := make([]PlayerResult, 0, len(r.Players))
	for _, p := range r.Players {
		list := r.Submissions[words.Fold(p)]
		unique := []string{}
		seen := make(map[string]struct{})
		for _, w := range list {
			if _, ok := seen[w]; ok || freq[w] != 1 {
				continue
			}
			seen[w] = struct{}{}
			unique = append(unique, w)
		}
		players = append(players, PlayerResult{
			Name:        p,
			Words:       append([]string{}, list...),
			UniqueWords: unique,
			Score:       words.Total(unique),
		})
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	return Results{Players: players, Duplicates: duplicates, Status: r.Status}
}
