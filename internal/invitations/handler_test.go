package invitations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCampaignSubject(t *testing.T) {
	assert.Equal(t, "Asientos confirmados", campaignSubject("Asientos confirmados", "Graduación 2026"))
	assert.Equal(t, "Invitación: Graduación 2026", campaignSubject("", "Graduación 2026"),
		"a send without a custom subject gets the event default")
	assert.Equal(t, "Invitación: Graduación 2026", campaignSubject("   ", "Graduación 2026"))
}
