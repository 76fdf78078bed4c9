// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供缓存相关的依赖
var ProviderSet = wire.NewSet(ProvideRedis, ProvideLocker)

const lockPrefix = "roster:lock:"

// ProvideRedis 提供 Redis 实例, nil when no address is configured
func ProvideRedis(conf Redis) (*redis.Client, func(), error) {
	if !conf.Enabled() {
		return nil, func() {}, nil
	}
	client, err := NewRedis(context.Background(), conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideLocker 提供分布式锁, falling back to NopLocker without redis
func ProvideLocker(client *redis.Client) Locker {
	if client == nil {
		return NopLocker{}
	}
	return NewRedisLocker(client, lockPrefix)
}
