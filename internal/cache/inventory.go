package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostSlugKeyPrefix = "post:slug:%s"
	RecentPostsKey    = "posts:recent"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	RecentPostsTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostSlugKey(slug string) string {
	return fmt.Sprintf(PostSlugKeyPrefix, slug)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePostSlug(ctx context.Context, slug string) {
	Invalidate(ctx, PostSlugKey(slug))
}

func InvalidateRecentPosts(ctx context.Context) {
	Invalidate(ctx, RecentPostsKey)
}
