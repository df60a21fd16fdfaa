package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvite_EnglishContainsLinksAndName(t *testing.T) {
	subject, body, err := RenderInvite("en", InviteData{
		RecipientName: "Alice",
		SenderContact: "bob@example.com",
		AcceptURL:     "https://example.com/recommendations/accept/5",
		DeclineURL:    "https://example.com/recommendations/decline/5",
	})
	require.NoError(t, err)
	assert.Equal(t, "You have been recommended", subject)
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "bob@example.com")
	assert.Contains(t, body, "https://example.com/recommendations/accept/5")
	assert.Contains(t, body, "https://example.com/recommendations/decline/5")
}

func TestRenderInvite_GermanLocale(t *testing.T) {
	subject, body, err := RenderInvite("de", InviteData{RecipientName: "Frau Meier"})
	require.NoError(t, err)
	assert.Equal(t, "Sie wurden weiterempfohlen", subject)
	assert.Contains(t, body, "Frau Meier")
}

func TestRenderInvite_UnknownLocaleFallsBackToEnglish(t *testing.T) {
	subject, _, err := RenderInvite("fr", InviteData{RecipientName: "Zoe"})
	require.NoError(t, err)
	assert.Equal(t, "You have been recommended", subject)
}

func TestRenderInvite_EscapesHTMLInNames(t *testing.T) {
	_, body, err := RenderInvite("en", InviteData{RecipientName: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
