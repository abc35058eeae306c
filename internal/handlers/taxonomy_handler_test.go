package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCategoryEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	userID, cookie := registerAndLogin(t, r, "author@example.com")

	w, _ := doJSON(t, r, http.MethodPost, "/api/categories/create", gin.H{"category": "Plumbing"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/categories/create", gin.H{"category": "Plumbing", "description": "pipes"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID       string   `json:"id"`
		Category string   `json:"category"`
		Author   string   `json:"author"`
		Tasks    []string `json:"tasks"`
	}
	env.decodeKey(t, "category", &created)
	require.Equal(t, "Plumbing", created.Category)
	require.Equal(t, userID, created.Author)
	require.NotNil(t, created.Tasks)

	w, env = doJSON(t, r, http.MethodPost, "/api/categories/create", gin.H{"category": "Plumbing"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, env.Message, "already exists")

	w, _ = doJSON(t, r, http.MethodPost, "/api/categories/create", gin.H{"description": "no title"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPut, "/api/categories/"+created.ID, gin.H{"categoryName": "Plumbing & Water"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	env.decodeKey(t, "category", &created)
	require.Equal(t, "Plumbing & Water", created.Category)

	w, env = doJSON(t, r, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	env.decodeKey(t, "categories", &list)
	require.Len(t, list, 1)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/categories/"+created.ID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/categories/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStationEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	_, cookie := registerAndLogin(t, r, "author@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/regions/create", gin.H{"title": "North"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	north := createdID(t, env, "region")
	w, env = doJSON(t, r, http.MethodPost, "/api/regions/create", gin.H{"title": "South"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	south := createdID(t, env, "region")

	w, _ = doJSON(t, r, http.MethodPost, "/api/stations/create", gin.H{
		"name": "Lost", "regionId": "missing", "managerName": "Kim", "managerPhone": "1",
	}, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/stations/create", gin.H{"name": "No region", "managerName": "Kim", "managerPhone": "1"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/stations/create", gin.H{
		"name": "Station 1", "regionId": north, "managerName": "Kim", "managerPhone": "555-0101",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stationID := createdID(t, env, "station")

	w, _ = doJSON(t, r, http.MethodPatch, "/api/stations/"+stationID, gin.H{"region": south}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var region struct {
		Stations       []string `json:"stations"`
		StationDetails []struct {
			Name string `json:"name"`
		} `json:"stationDetails"`
	}
	w, env = doJSON(t, r, http.MethodGet, "/api/regions/"+north, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env.decodeKey(t, "region", &region)
	require.Empty(t, region.Stations)

	w, env = doJSON(t, r, http.MethodGet, "/api/regions/"+south, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env.decodeKey(t, "region", &region)
	require.Equal(t, []string{stationID}, region.Stations)
	require.Len(t, region.StationDetails, 1)
	require.Equal(t, "Station 1", region.StationDetails[0].Name)

	w, env = doJSON(t, r, http.MethodGet, "/api/stations", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stations []struct {
		Region struct {
			Title string `json:"title"`
		} `json:"region"`
	}
	env.decodeKey(t, "stations", &stations)
	require.Len(t, stations, 1)
	require.Equal(t, "South", stations[0].Region.Title)
}
