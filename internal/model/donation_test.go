package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

const (
	testDonorName  = "  Jordan Giver  "
	testDonorEmail = "  JORDAN@Example.COM  "
)

func TestNewDonationDefaultsAndNormalizes(t *testing.T) {
	donation, err := NewDonation(DonationInput{
		ID:         "donation-1",
		WidgetID:   " widget-1 ",
		CauseID:    " cause-1 ",
		Amount:     2500,
		DonorName:  testDonorName,
		DonorEmail: testDonorEmail,
	})
	require.NoError(t, err)

	require.Equal(t, "widget-1", donation.WidgetID)
	require.Equal(t, "cause-1", donation.CauseID)
	require.Equal(t, DonationFrequencyOneTime, donation.Frequency)
	require.Equal(t, DonationStatusPending, donation.Status)
	require.Equal(t, "Jordan Giver", donation.DonorName)
	require.Equal(t, strings.ToLower(strings.TrimSpace(testDonorEmail)), donation.DonorEmail)
}

func TestNewDonationRejectsInvalidFields(t *testing.T) {
	_, err := NewDonation(DonationInput{WidgetID: "  ", Amount: 2500})
	require.ErrorIs(t, err, ErrInvalidDonationWidget)

	_, err = NewDonation(DonationInput{WidgetID: "widget-1", Amount: MinimumDonationAmountCents - 1})
	require.ErrorIs(t, err, ErrInvalidDonationAmount)

	_, err = NewDonation(DonationInput{WidgetID: "widget-1", Amount: 2500, Frequency: "weekly"})
	require.ErrorIs(t, err, ErrInvalidDonationFrequency)
}

func TestNewDonationTruncatesOverlongDonorFields(t *testing.T) {
	donation, err := NewDonation(DonationInput{
		WidgetID:  "widget-1",
		Amount:    2500,
		DonorName: strings.Repeat("n", donorNameMaxLength+10),
	})
	require.NoError(t, err)
	require.Len(t, donation.DonorName, donorNameMaxLength)
}

func TestNewDonationTruncationKeepsRuneBoundaries(t *testing.T) {
	donation, err := NewDonation(DonationInput{
		WidgetID:  "widget-1",
		Amount:    2500,
		DonorName: strings.Repeat("€", donorNameMaxLength),
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(donation.DonorName), donorNameMaxLength)
	require.True(t, utf8.ValidString(donation.DonorName))
}

func TestValidateDonationFrequency(t *testing.T) {
	for _, frequency := range []string{DonationFrequencyOneTime, DonationFrequencyMonthly, DonationFrequencyYearly} {
		require.NoError(t, ValidateDonationFrequency(frequency))
	}
	require.ErrorIs(t, ValidateDonationFrequency("weekly"), ErrInvalidDonationFrequency)
	require.ErrorIs(t, ValidateDonationFrequency(""), ErrInvalidDonationFrequency)
}
