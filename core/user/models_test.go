package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_SetCheckPassword(t *testing.T) {
	var usr User
	err := usr.SetPassword("Sup3rS3cret!")
	assert.NoError(t, err)
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotContains(t, string(usr.PasswordHash), "Sup3rS3cret!")

	assert.NoError(t, usr.CheckPassword("Sup3rS3cret!"))
	assert.Error(t, usr.CheckPassword("sup3rs3cret!"))
	assert.Error(t, usr.CheckPassword(""))
}

func TestUser_SetPassword_distinctDigests(t *testing.T) {
	var u1, u2 User
	assert.NoError(t, u1.SetPassword("samepassword"))
	assert.NoError(t, u2.SetPassword("samepassword"))
	// bcrypt salts: same password, different digests, both verifiable
	assert.NotEqual(t, u1.PasswordHash, u2.PasswordHash)
	assert.NoError(t, u1.CheckPassword("samepassword"))
	assert.NoError(t, u2.CheckPassword("samepassword"))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{in: "user", want: RoleUser},
		{in: "student", want: RoleStudent},
		{in: "admin", want: RoleAdmin},
		{in: "", wantErr: ErrUnknownRole},
		{in: "Admin", wantErr: ErrUnknownRole},
		{in: "teacher", wantErr: ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser_Profile(t *testing.T) {
	usr := User{ID: "abc", Name: "Jane", Email: "jane@test.cd", Role: RoleStudent, PasswordHash: []byte("x")}
	p := usr.Profile()
	assert.Equal(t, Profile{Name: "Jane", Email: "jane@test.cd", Role: RoleStudent}, p)
}
