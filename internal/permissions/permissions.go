package permissions

import (
	"errors"
	"fmt"
)

// Level is a named permission level within a project.
type Level string

const (
	LevelRead          Level = "read"
	LevelAddUsers      Level = "add_users"
	LevelModifyTasks   Level = "modify_tasks"
	LevelCreateTasks   Level = "create_tasks"
	LevelDeleteTasks   Level = "delete_tasks"
	LevelDeleteProject Level = "delete_project"
	LevelCreator       Level = "creator"
)

// ErrUnknownLevel is returned when a level name is not on the ladder.
var ErrUnknownLevel = errors.New("unknown permission level")

// ladder is the single source of truth for permission ordering. A higher
// rank can do everything a lower rank can. The creator rank is reserved:
// it is assigned once at project creation and never via level changes.
var ladder = []Level{
	LevelRead,
	LevelAddUsers,
	LevelModifyTasks,
	LevelCreateTasks,
	LevelDeleteTasks,
	LevelDeleteProject,
	LevelCreator,
}

var ranks = func() map[Level]int {
	m := make(map[Level]int, len(ladder))
	for i, l := range ladder {
		m[l] = i + 1
	}
	return m
}()

// Rank returns the integer rank of a level, starting at 1 for the lowest.
func Rank(level Level) (int, error) {
	r, ok := ranks[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	return r, nil
}

// Valid reports whether the level name is on the ladder.
func Valid(level Level) bool {
	_, ok := ranks[level]
	return ok
}

// Compare returns a negative value if a ranks below b, zero if equal,
// and a positive value if a ranks above b.
func Compare(a, b Level) (int, error) {
	ra, err := Rank(a)
	if err != nil {
		return 0, err
	}
	rb, err := Rank(b)
	if err != nil {
		return 0, err
	}
	return ra - rb, nil
}

// Levels returns the full ladder in ascending rank order.
func Levels() []Level {
	out := make([]Level, len(ladder))
	copy(out, ladder)
	return out
}

// Lowest returns the default level granted to a user who joins a project.
func Lowest() Level {
	return ladder[0]
}

// AssignableAtOrBelow returns, in ascending rank order, the levels at or
// below the given level that can be handed out by level-change operations.
// The creator level is never included.
func AssignableAtOrBelow(level Level) ([]Level, error) {
	max, err := Rank(level)
	if err != nil {
		return nil, err
	}
	var out []Level
	for _, l := range ladder {
		if l == LevelCreator {
			continue
		}
		if ranks[l] <= max {
			out = append(out, l)
		}
	}
	return out, nil
}
