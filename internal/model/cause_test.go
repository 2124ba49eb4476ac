package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestNewCauseValidatesAndNormalizes(t *testing.T) {
	cause, err := NewCause(CauseInput{
		ID:          "cause-1",
		WidgetID:    " widget-1 ",
		Name:        " Clean Water ",
		Description: " Wells for rural communities. ",
		GoalAmount:  500000,
		IsActive:    true,
		SortOrder:   2,
	})
	require.NoError(t, err)

	require.Equal(t, "widget-1", cause.WidgetID)
	require.Equal(t, "Clean Water", cause.Name)
	require.Equal(t, "Wells for rural communities.", cause.Description)
	require.Equal(t, int64(500000), cause.GoalAmount)
	require.Equal(t, int64(0), cause.RaisedAmount)
	require.Equal(t, 2, cause.SortOrder)
}

func TestNewCauseRejectsInvalidFields(t *testing.T) {
	_, err := NewCause(CauseInput{WidgetID: "  ", Name: "Cause"})
	require.ErrorIs(t, err, ErrInvalidCauseWidget)

	_, err = NewCause(CauseInput{WidgetID: "widget-1", Name: "  "})
	require.ErrorIs(t, err, ErrInvalidCauseName)

	_, err = NewCause(CauseInput{WidgetID: "widget-1", Name: strings.Repeat("n", causeNameMaxLength+1)})
	require.ErrorIs(t, err, ErrInvalidCauseName)

	_, err = NewCause(CauseInput{WidgetID: "widget-1", Name: "Cause", GoalAmount: -1})
	require.ErrorIs(t, err, ErrInvalidCauseAmount)

	_, err = NewCause(CauseInput{WidgetID: "widget-1", Name: "Cause", RaisedAmount: -1})
	require.ErrorIs(t, err, ErrInvalidCauseAmount)
}

func TestNewCauseTruncatesOverlongDescription(t *testing.T) {
	cause, err := NewCause(CauseInput{
		WidgetID:    "widget-1",
		Name:        "Cause",
		Description: strings.Repeat("d", causeDescriptionMaxLength+50),
	})
	require.NoError(t, err)
	require.Len(t, cause.Description, causeDescriptionMaxLength)
}

func TestNewCauseTruncationKeepsRuneBoundaries(t *testing.T) {
	cause, err := NewCause(CauseInput{
		WidgetID:    "widget-1",
		Name:        "Cause",
		Description: strings.Repeat("€", causeDescriptionMaxLength),
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(cause.Description), causeDescriptionMaxLength)
	require.True(t, utf8.ValidString(cause.Description))
}

func TestAccrueAddsToRaisedTotal(t *testing.T) {
	cause := Cause{RaisedAmount: 1000}

	require.NoError(t, cause.Accrue(2500))
	require.Equal(t, int64(3500), cause.RaisedAmount)

	require.ErrorIs(t, cause.Accrue(0), ErrInvalidCauseAmount)
	require.ErrorIs(t, cause.Accrue(-100), ErrInvalidCauseAmount)
	require.Equal(t, int64(3500), cause.RaisedAmount)
}
