package profile_test

import (
	"encoding/json"
	"testing"

	"github.com/careplanhq/portal-client/internal/utils"
	"github.com/careplanhq/portal-client/profile"
	"github.com/stretchr/testify/require"
)

func TestRoleHelpers(t *testing.T) {
	provider := profile.Profile{RoleID: profile.RoleCareProvider}
	client := profile.Profile{RoleID: profile.RoleClient}

	require.True(t, provider.IsCareProvider())
	require.False(t, provider.IsClient())
	require.True(t, client.IsClient())
	require.False(t, client.IsAdmin())
}

func TestHasOffice(t *testing.T) {
	require.False(t, (&profile.Profile{}).HasOffice())
	require.False(t, (&profile.Profile{OfficeID: utils.Ptr(int64(0))}).HasOffice())
	require.True(t, (&profile.Profile{OfficeID: utils.Ptr(int64(7))}).HasOffice())
}

func TestProfileOptionalFieldsRoundTrip(t *testing.T) {
	var p profile.Profile
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":1,"email":"a@b.com","name":"A","role_id":3,"join_code":"XK42"}`), &p))

	require.Nil(t, p.OfficeID)
	require.Equal(t, "XK42", utils.Value(p.JoinCode))
}

func TestUpdateRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     profile.UpdateRequest
		wantErr bool
	}{
		{"empty update is valid", profile.UpdateRequest{}, false},
		{"name only", profile.UpdateRequest{Name: "Dana"}, false},
		{"bad email", profile.UpdateRequest{Email: "not-an-email"}, true},
		{
			"password change needs the current password",
			profile.UpdateRequest{Password: "NewPass123"},
			true,
		},
		{
			"valid password change",
			profile.UpdateRequest{Password: "NewPass123", CurrentPassword: "OldPass123"},
			false,
		},
		{
			"weak password rejected",
			profile.UpdateRequest{Password: "short", CurrentPassword: "OldPass123"},
			true,
		},
		{
			"password without digits rejected",
			profile.UpdateRequest{Password: "NoDigitsHere", CurrentPassword: "OldPass123"},
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUpdateRequestOmitsUnsetPassword(t *testing.T) {
	// The 401 carve-out keys off the presence of a password field in the
	// outbound body, so an unset password must not serialise at all.
	raw, err := json.Marshal(profile.UpdateRequest{Name: "Dana"})
	require.NoError(t, err)
	require.NotContains(t, string(raw), "password")

	raw, err = json.Marshal(profile.UpdateRequest{Password: "NewPass123", CurrentPassword: "OldPass123"})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"password":"NewPass123"`)
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, profile.ValidatePasswordStrength("GoodPass1"))
	require.Error(t, profile.ValidatePasswordStrength("short1A"))
	require.Error(t, profile.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, profile.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, profile.ValidatePasswordStrength("NoNumbersHere"))
}
