package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"instasphere/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNetworkErr(t *testing.T) {
	networkish := []error{
		driver.ErrBadConn,
		errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"),
		errors.New("invalid connection"),
		errors.New("read tcp 10.0.0.1:3306: i/o timeout"),
		&net.OpError{Op: "dial", Err: errors.New("unreachable")},
	}
	for _, err := range networkish {
		assert.True(t, isNetworkErr(err), "%v should count as a network failure", err)
	}

	businesslike := []error{
		nil,
		pkg.Validationf("bad input"),
		pkg.Authorizationf("invalid password"),
		errors.New("record not found"),
	}
	for _, err := range businesslike {
		assert.False(t, isNetworkErr(err), "%v must not trigger the demo fallback", err)
	}
}

func TestDemoFallbackOnNetworkError(t *testing.T) {
	s := NewUserService(nil)

	pair, demo, ok := s.demoFallback(driver.ErrBadConn, "casey@example.com", "casey")
	require.True(t, ok)
	require.NotNil(t, pair)
	assert.Equal(t, "casey", demo.Username)

	// 兜底发出的 token 必须带 demo 标记，中间件靠它跳过 redis 会话校验
	claims, err := pkg.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Demo)
	assert.Equal(t, demo.ID, claims.UserID)

	// 业务错误不触发兜底
	_, _, ok = s.demoFallback(pkg.Validationf("incorrect code"), "casey@example.com", "casey")
	assert.False(t, ok)
	_, _, ok = s.demoFallback(nil, "casey@example.com", "casey")
	assert.False(t, ok)
}

func TestDemoIdentityFromEmail(t *testing.T) {
	s := NewUserService(nil)

	u := s.demoIdentity("casey@example.com", "")
	assert.Equal(t, "casey", u.Username)
	assert.Equal(t, "casey@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	// demo 身份进内存表，Get 能找回来
	got, err := s.Get(context.Background(), u.ID)
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	anon := s.demoIdentity("not-an-email", "")
	assert.Equal(t, "Anonymous", anon.Username)
}
