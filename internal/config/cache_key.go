package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// OTPKey returns the Redis key holding the pending OTP for an email.
// Purpose is "registration" or "reset_password".
func (r *CacheKeyStruct) OTPKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

// DashboardStatsKey returns the cache key for an admin branch dashboard snapshot.
func (r *CacheKeyStruct) DashboardStatsKey(branch string) string {
	return fmt.Sprintf("dashboard:%s:stats", branch)
}

// BranchNotifyChannel returns the Redis PubSub channel carrying live
// notifications for admins of a branch. An empty branch maps to the
// broadcast channel every admin session listens on.
func (r *CacheKeyStruct) BranchNotifyChannel(branch string) string {
	if branch == "" {
		return "branch:all:notify"
	}
	return fmt.Sprintf("branch:%s:notify", branch)
}

var CacheKey = NewCacheKeyStruct()
