package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"ircount/config"
)

// CurrentSchemaVersion is the current cache schema version.
// Increment this when the stored result format changes.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keySettingsHash  = []byte("settings_hash")
)

// SchemaInfo stores schema version and counting-settings hash.
type SchemaInfo struct {
	Version      int    `json:"version"`
	SettingsHash string `json:"settings_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (c *BoltCache) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				return fmt.Errorf("corrupt schema version: %w", err)
			}
		}
		if hashData := b.Get(keySettingsHash); hashData != nil {
			info.SettingsHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (c *BoltCache) SetSchemaInfo(info *SchemaInfo) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}
		return b.Put(keySettingsHash, []byte(info.SettingsHash))
	})
}

// ComputeSettingsHash hashes every setting that can change a count.
// Changes to this hash invalidate all cached results.
func ComputeSettingsHash(cfg *config.Config) string {
	data, _ := json.Marshal(cfg.Count)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration checks if migration or a full clear is needed.
func (c *BoltCache) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := c.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("cache created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.SettingsHash != "" && info.SettingsHash != ComputeSettingsHash(cfg) {
		result.NeedsRebuild = true
		result.Reason = "count settings changed"
	}

	return result, nil
}

// Migrate brings the schema to the current version and records the
// settings hash.
func (c *BoltCache) Migrate(cfg *config.Config) error {
	info, err := c.GetSchemaInfo()
	if err != nil {
		return err
	}

	// v0 -> v1 only stamps the version; there is no older layout.
	if info.Version > CurrentSchemaVersion {
		return fmt.Errorf("cannot migrate down from v%d", info.Version)
	}

	return c.SetSchemaInfo(&SchemaInfo{
		Version:      CurrentSchemaVersion,
		SettingsHash: ComputeSettingsHash(cfg),
	})
}

// Prepare runs the migration check, clearing stale results when required.
func (c *BoltCache) Prepare(cfg *config.Config) (*MigrationResult, error) {
	result, err := c.CheckMigration(cfg)
	if err != nil {
		return nil, err
	}
	if result.NeedsRebuild {
		if err := c.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if result.NeedsRebuild || result.NeedsMigration {
		if err := c.Migrate(cfg); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return result, nil
}

// Clear removes all cached results and schema bookkeeping.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketResults, bucketMeta} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
