//go:build functional

package test_functional

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/go-resty/resty/v2"
)

var tables = []string{
	"user_hearts", "project_hearts", "project_members", "project_admins", "project_tags",
	"join_requests", "comments", "posts", "projects", "tags", "categories", "users",
}

func FlushDB() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	for _, table := range tables {
		if _, err := DBConn.Exec(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			panic(err)
		}
	}
}

func apiURL(path string) string {
	u := AppBaseURL
	u.Path = "/api/v1" + path
	return u.String()
}

func request(ctx context.Context) *resty.Request {
	return resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx)
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
