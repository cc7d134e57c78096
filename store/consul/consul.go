// Package consul provides a grid store driver on top of the HashiCorp
// Consul KV store. Values are capped around 512KB by Consul, which
// makes this driver a fit for configuration trees and small assets
// rather than bulk data.
package consul

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/gridfs/store"
)

// Slightly below the Consul KV limit to leave room for encoding
// overhead.
const maxValueSize = 500 * 1024

func init() {
	store.Register(&Driver{})
}

type Driver struct{}

func (*Driver) Name() string {
	return "consul"
}

func (*Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("consul: missing zone"))
	}

	clientConfig := api.DefaultConfig()
	if cfg.Host != "" {
		port := cfg.Port
		if port == 0 {
			port = 8500
		}
		clientConfig.Address = fmt.Sprintf("%s:%d", cfg.Host, port)
	}
	if cfg.Credential != "" {
		clientConfig.Token = cfg.Credential
	}
	if dc := cfg.Option("datacenter", ""); dc != "" {
		clientConfig.Datacenter = dc
	}
	if ns := cfg.Option("namespace", ""); ns != "" {
		clientConfig.Namespace = ns
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	conn := &Conn{kv: client.KV()}

	// The zone root marker exists from the first session on; the probe
	// doubles as the liveness and credential check.
	root := markerKey("/" + cfg.Zone)
	pair, _, err := conn.kv.Get(root, nil)
	if err != nil {
		return nil, wrap(err, "")
	}
	if pair == nil {
		if _, err := conn.kv.Put(&api.KVPair{Key: root}, nil); err != nil {
			return nil, wrap(err, "")
		}
	}

	return conn, nil
}

type Conn struct {
	kv *api.KV
}

func (c *Conn) Ping(ctx context.Context) error {
	if _, _, err := c.kv.Keys("", "/", nil); err != nil {
		return store.NewError(store.CodeConnection, "", err)
	}

	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	return nil
}

func (c *Conn) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityRangeRead,
			store.CapabilityAppend,
		},
		MaxObjectSize: maxValueSize,
	}
}

// objectKey maps a remote path onto a KV key.
func objectKey(remote string) string {
	return strings.TrimPrefix(remote, "/")
}

// markerKey spells the collection marker for a remote path.
func markerKey(remote string) string {
	return objectKey(remote) + "/"
}

func parentOf(remote string) string {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		return ""
	}

	return remote[:idx]
}

// indexTime turns a raft index into a stand-in timestamp. Consul does
// not record wall-clock times for KV entries.
func indexTime(index uint64) time.Time {
	return time.Unix(0, int64(index))
}

func wrap(err error, remote string) error {
	if err == nil {
		return nil
	}

	var serr *store.Error
	if errors.As(err, &serr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "403") || strings.Contains(msg, "Permission denied") || strings.Contains(msg, "ACL not found"):
		return store.NewError(store.CodeAuthFailed, remote, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return store.NewError(store.CodeConnection, remote, err)
	}

	return store.NewError(store.CodeUnknown, remote, err)
}
