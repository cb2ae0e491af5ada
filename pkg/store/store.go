// Package store publishes a generated topology into Redis as CONFIG_DB-style
// hashes (TABLE|key), where emulation tooling can pick it up.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/astopo/pkg/labgen"
	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

// DefaultDB is the Redis database the publisher writes to.
const DefaultDB = 4

// Tables lists every table the publisher owns.
var Tables = []string{labgen.TableAS, labgen.TableDevice, labgen.TableInterface}

// TableChange represents a single hash write for pipeline execution.
type TableChange struct {
	Table  string
	Key    string
	Fields map[string]string
}

// RedisKey returns the "TABLE|key" form of the entry.
func (c TableChange) RedisKey() string {
	return c.Table + "|" + c.Key
}

// Changes flattens a table dump into writes ordered by table, then key.
func Changes(db labgen.ConfigDB) []TableChange {
	var out []TableChange
	for table, entries := range db {
		for key, fields := range entries {
			out = append(out, TableChange{Table: table, Key: key, Fields: fields})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Publisher writes topologies into one Redis database.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher for the Redis server at addr.
func NewPublisher(addr string, db int) *Publisher {
	return &Publisher{client: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Ping checks that the server is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", p.client.Options().Addr, err)
	}
	return nil
}

// Publish replaces every owned table with the contents of t in a single
// MULTI/EXEC transaction. It returns the number of entries written.
func (p *Publisher) Publish(ctx context.Context, t *topology.Topology) (int, error) {
	stale, err := p.ownedKeys(ctx)
	if err != nil {
		return 0, err
	}
	changes := Changes(labgen.BuildConfigDB(t))

	pipe := p.client.TxPipeline()
	if len(stale) > 0 {
		pipe.Del(ctx, stale...)
	}
	for _, c := range changes {
		args := make([]interface{}, 0, len(c.Fields)*2)
		for k, v := range c.Fields {
			args = append(args, k, v)
		}
		if len(args) == 0 {
			// Empty entry: NULL sentinel (SONiC convention)
			args = append(args, "NULL", "NULL")
		}
		pipe.HSet(ctx, c.RedisKey(), args...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, fmt.Errorf("pipeline exec: %w", err)
	}

	util.WithFields(map[string]interface{}{
		"addr":    p.client.Options().Addr,
		"entries": len(changes),
		"removed": len(stale),
	}).Info("published topology")
	return len(changes), nil
}

// Clear deletes every owned table and returns the number of keys removed.
func (p *Publisher) Clear(ctx context.Context) (int, error) {
	keys, err := p.ownedKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := p.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("deleting %d keys: %w", len(keys), err)
	}
	return len(keys), nil
}

// Read loads every owned table back into a dump.
func (p *Publisher) Read(ctx context.Context) (labgen.ConfigDB, error) {
	keys, err := p.ownedKeys(ctx)
	if err != nil {
		return nil, err
	}
	db := make(labgen.ConfigDB)
	for _, k := range keys {
		fields, err := p.client.HGetAll(ctx, k).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", k, err)
		}
		table, key, ok := strings.Cut(k, "|")
		if !ok {
			continue
		}
		if db[table] == nil {
			db[table] = make(map[string]map[string]string)
		}
		db[table][key] = fields
	}
	return db, nil
}

// ownedKeys scans for keys of every owned table.
func (p *Publisher) ownedKeys(ctx context.Context) ([]string, error) {
	var keys []string
	for _, table := range Tables {
		iter := p.client.Scan(ctx, 0, table+"|*", 500).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("scanning keys for table %s: %w", table, err)
		}
	}
	return keys, nil
}
