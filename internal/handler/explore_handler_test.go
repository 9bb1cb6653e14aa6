package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"instasphere/internal/middleware"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePartnerLister struct {
	list []mysql.VerifiedPartner
	err  error
}

func (f *fakePartnerLister) Partners(context.Context, string) ([]mysql.VerifiedPartner, error) {
	return f.list, f.err
}

type fakePostLister struct {
	list []model.Post
	err  error
}

func (f *fakePostLister) List(context.Context, string) ([]model.Post, error) {
	return f.list, f.err
}

func exploreRouter(dms partnerLister, posts postLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/explore", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, "u1")
	}, NewExploreHandler(dms, posts).Feed)
	return r
}

func doExplore(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/explore", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExploreFeedAggregates(t *testing.T) {
	dms := &fakePartnerLister{list: []mysql.VerifiedPartner{
		{UserPresence: model.UserPresence{UserID: "u2", Name: "dana", IsOnline: true}, IsVerified: true, VerificationLevel: "email"},
	}}
	posts := &fakePostLister{list: []model.Post{
		{ID: "p1", UserID: "u2", UserName: "dana", Title: "hello"},
	}}

	rec := doExplore(t, exploreRouter(dms, posts))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users []mysql.VerifiedPartner `json:"users"`
		Posts []model.Post            `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 1)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "dana", resp.Users[0].Name)
	assert.Equal(t, "hello", resp.Posts[0].Title)
}

func TestExploreFeedPostsMissingDegrades(t *testing.T) {
	dms := &fakePartnerLister{list: []mysql.VerifiedPartner{
		{UserPresence: model.UserPresence{UserID: "u2", Name: "dana"}},
	}}
	posts := &fakePostLister{err: pkg.ErrCollectionMissing}

	// 帖子表缺失不拖垮整页，用户照常返回、帖子给空数组
	rec := doExplore(t, exploreRouter(dms, posts))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users []mysql.VerifiedPartner `json:"users"`
		Posts []model.Post            `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 1)
	assert.Empty(t, resp.Posts)
}

func TestExploreFeedPartnerFailure(t *testing.T) {
	dms := &fakePartnerLister{err: pkg.Loadf("db down")}
	posts := &fakePostLister{}

	rec := doExplore(t, exploreRouter(dms, posts))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
