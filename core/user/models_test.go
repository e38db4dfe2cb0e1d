package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRef_Name(t *testing.T) {
	guru := Role{ID: "1", Name: RoleTeacher}

	tests := []struct {
		name string
		ref  RoleRef
		want string
	}{
		{name: "linked role wins", ref: RoleRef{Linked: &guru, Named: RoleStudent}, want: RoleTeacher},
		{name: "named fallback", ref: RoleRef{Named: RoleStudent}, want: RoleStudent},
		{name: "unresolvable", ref: RoleRef{}, want: RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Name())
		})
	}
}

func TestRoleRef_JSON(t *testing.T) {
	guru := Role{ID: "1", Name: RoleTeacher}

	data, err := json.Marshal(RoleRef{Linked: &guru})
	assert.NoError(t, err)
	assert.Equal(t, `"guru"`, string(data))

	data, err = json.Marshal(RoleRef{})
	assert.NoError(t, err)
	assert.Equal(t, `"unknown"`, string(data))

	var ref RoleRef
	assert.NoError(t, json.Unmarshal([]byte(`"siswa"`), &ref))
	assert.Equal(t, RoleStudent, ref.Name())
	assert.Nil(t, ref.Linked)
}

func TestUser_Password(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("Str0ng#Pass!"))
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotContains(t, string(usr.PasswordHash), "Str0ng#Pass!")

	assert.NoError(t, usr.CheckPassword("Str0ng#Pass!"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func TestUser_roleHelpers(t *testing.T) {
	admin := User{Role: RoleRef{Named: RoleAdmin}}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsStudent())

	siswa := User{Role: RoleRef{Named: RoleStudent}}
	assert.True(t, siswa.IsStudent())
	assert.Equal(t, RoleStudent, siswa.RoleName())
}

func TestQueryFilter_CleanEcho(t *testing.T) {
	qf := QueryFilter{Search: "  Budi ", Role: "All"}
	qf.Clean()
	assert.Equal(t, "Budi", qf.Search)
	assert.Equal(t, "", qf.Role)
	assert.Equal(t, "all", qf.Echo().Role)

	qf = QueryFilter{Role: RoleStudent}
	qf.Clean()
	assert.Equal(t, RoleStudent, qf.Role)
	assert.Equal(t, RoleStudent, qf.Echo().Role)
}
