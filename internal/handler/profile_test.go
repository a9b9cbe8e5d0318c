package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestValidateLocation(t *testing.T) {
	e := echo.New()
	e.GET("/v1/locations/validate", ValidateLocation)

	cases := []struct {
		query string
		code  int
	}{
		{"latitude=9.93&longitude=76.26", http.StatusOK},
		{"latitude=0&longitude=0", http.StatusOK},
		{"latitude=91&longitude=76.26", http.StatusBadRequest},
		{"latitude=9.93", http.StatusBadRequest},
		{"latitude=north&longitude=east", http.StatusBadRequest},
	}
	for _, c := range cases {
		rec := get(e, "/v1/locations/validate?"+c.query)
		if rec.Code != c.code {
			t.Errorf("%s: status %d, want %d", c.query, rec.Code, c.code)
		}
	}
}

func bindProfile(t *testing.T, req *http.Request) profileReq {
	t.Helper()
	e := echo.New()
	var got profileReq
	e.POST("/p", func(c echo.Context) error {
		if err := c.Bind(&got); err != nil {
			t.Fatalf("bind: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestProfileRequestAcceptsNumericAndStringCoordinates(t *testing.T) {
	body := `{"full_name":"Asha","latitude":9.9312,"longitude":"76.2673","ward":5,"selected_date":"1,2"}`
	req := httptest.NewRequest(http.MethodPost, "/p", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	in := bindProfile(t, req).input()
	if in.Latitude != "9.9312" || in.Longitude != "76.2673" || in.Ward != 5 || in.SelectedDate != "1,2" {
		t.Fatalf("unexpected input %+v", in)
	}

	form := url.Values{"full_name": {"Asha"}, "latitude": {"9.9312"}, "longitude": {""}, "localbody_id": {"12"}}
	req = httptest.NewRequest(http.MethodPost, "/p", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	in = bindProfile(t, req).input()
	if in.Latitude != "9.9312" || in.Longitude != "" || in.LocalBodyID != 12 {
		t.Fatalf("unexpected form input %+v", in)
	}
}
