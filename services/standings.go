package services

import (
	"sort"

	"github.com/clubarena/championship-system/models"
)

// ComputeStandings ranks a round-robin stage from its result-confirmed
// matches. Order: match wins, then set differential, then head-to-head wins
// inside the tied subgroup, then the original seed order as a stable
// fallback. Matches that are not confirmed yet simply contribute nothing, so
// the table can be recomputed after every result.
func ComputeStandings(seedOrder []int, matches []*models.Match) []*models.StandingsEntry {
	seedIndex := make(map[int]int, len(seedOrder))
	rows := make(map[int]*models.StandingsEntry, len(seedOrder))
	for i, entryID := range seedOrder {
		seedIndex[entryID] = i
		rows[entryID] = &models.StandingsEntry{EntryID: entryID}
	}

	confirmed := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsBye || m.ResultStatus != models.ResultConfirmed || m.WinnerEntryID == nil {
			continue
		}
		if m.Entry1ID == nil || m.Entry2ID == nil || m.Score == nil {
			continue
		}
		confirmed = append(confirmed, m)

		row1, ok1 := rows[*m.Entry1ID]
		row2, ok2 := rows[*m.Entry2ID]
		if !ok1 || !ok2 {
			continue
		}
		if *m.WinnerEntryID == *m.Entry1ID {
			row1.Wins++
			row2.Losses++
		} else {
			row2.Wins++
			row1.Losses++
		}
		if parsed, err := ParseScore(*m.Score); err == nil {
			row1.SetsWon += parsed.Sets1
			row1.SetsLost += parsed.Sets2
			row2.SetsWon += parsed.Sets2
			row2.SetsLost += parsed.Sets1
		}
	}

	table := make([]*models.StandingsEntry, 0, len(rows))
	for _, row := range rows {
		row.SetDiff = row.SetsWon - row.SetsLost
		table = append(table, row)
	}

	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Wins != table[j].Wins {
			return table[i].Wins > table[j].Wins
		}
		if table[i].SetDiff != table[j].SetDiff {
			return table[i].SetDiff > table[j].SetDiff
		}
		return seedIndex[table[i].EntryID] < seedIndex[table[j].EntryID]
	})

	breakTiesHeadToHead(table, confirmed, seedIndex)

	for i, row := range table {
		row.Rank = i + 1
	}
	return table
}

// breakTiesHeadToHead reorders each group of entries tied on wins and set
// differential by their wins in the matches played among themselves.
func breakTiesHeadToHead(table []*models.StandingsEntry, confirmed []*models.Match, seedIndex map[int]int) {
	for start := 0; start < len(table); {
		end := start + 1
		for end < len(table) &&
			table[end].Wins == table[start].Wins &&
			table[end].SetDiff == table[start].SetDiff {
			end++
		}
		if end-start > 1 {
			group := table[start:end]
			inGroup := make(map[int]bool, len(group))
			for _, row := range group {
				inGroup[row.EntryID] = true
			}
			h2hWins := make(map[int]int, len(group))
			for _, m := range confirmed {
				if inGroup[*m.Entry1ID] && inGroup[*m.Entry2ID] {
					h2hWins[*m.WinnerEntryID]++
				}
			}
			sort.SliceStable(group, func(i, j int) bool {
				if h2hWins[group[i].EntryID] != h2hWins[group[j].EntryID] {
					return h2hWins[group[i].EntryID] > h2hWins[group[j].EntryID]
				}
				return seedIndex[group[i].EntryID] < seedIndex[group[j].EntryID]
			})
		}
		start = end
	}
}
