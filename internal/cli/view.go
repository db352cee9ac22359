package cli

import (
	"context"
	"fmt"
	"iter"

	"github.com/rcliao/numberbot/internal/persist"
	"github.com/rcliao/numberbot/internal/store"
	"github.com/spf13/cobra"
)

// view is one namespace opened as either a dict store or a simple store.
// Keys are given exactly as they appear after "ns:" in the backend, e.g.
// 42 for a user or [-100,42] for a conversation.
type view struct {
	mode   string
	simple *persist.SimpleStore[string, any]
	dict   *persist.DictStore[string]
}

func addViewFlags(cmd *cobra.Command, withKey bool) {
	cmd.Flags().StringP("ns", "n", "", "Namespace, relative to the bot prefix (required)")
	cmd.Flags().StringP("mode", "m", "simple", "Value layout: simple (any JSON) or dict (JSON objects)")
	cmd.MarkFlagRequired("ns")
	if withKey {
		cmd.Flags().StringP("key", "k", "", "Key as stored (required)")
		cmd.MarkFlagRequired("key")
	}
}

func openView(cmd *cobra.Command) (*view, store.Backend, error) {
	ns, _ := cmd.Flags().GetString("ns")
	mode, _ := cmd.Flags().GetString("mode")
	if mode != "simple" && mode != "dict" {
		return nil, nil, fmt.Errorf("unknown mode %q", mode)
	}

	b, cfg, err := openBackend(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		b.Close()
		return nil, nil, err
	}

	v := &view{mode: mode}
	if mode == "dict" {
		v.dict = persist.NewDictStore(b, persist.Config[string, *persist.StoredDict]{
			Namespace: namespace(cfg, ns),
			Keys:      persist.StringKeys[string]{},
			Logger:    logger,
		})
	} else {
		v.simple = persist.NewSimpleStore(b, persist.Config[string, any]{
			Namespace: namespace(cfg, ns),
			Keys:      persist.StringKeys[string]{},
			Values:    persist.Sanitized{},
			Logger:    logger,
		})
	}
	return v, b, nil
}

func (v *view) namespace() string {
	if v.dict != nil {
		return v.dict.Namespace()
	}
	return v.simple.Namespace()
}

// get returns the value under key; dicts are returned as their contents.
func (v *view) get(ctx context.Context, key string) (any, bool, error) {
	if v.dict != nil {
		d, ok, err := v.dict.Get(ctx, key)
		if err != nil || !ok {
			return nil, ok, err
		}
		return d.Snapshot(), true, nil
	}
	return v.simple.Get(ctx, key)
}

func (v *view) set(ctx context.Context, key string, value any) error {
	if v.dict != nil {
		return v.dict.SetAny(ctx, key, value)
	}
	return v.simple.Set(ctx, key, value)
}

func (v *view) delete(ctx context.Context, key string) error {
	if v.dict != nil {
		return v.dict.Delete(ctx, key)
	}
	return v.simple.Delete(ctx, key)
}

func (v *view) keys(ctx context.Context) ([]string, error) {
	var seq iter.Seq2[string, error]
	if v.dict != nil {
		seq = v.dict.Keys(ctx)
	} else {
		seq = v.simple.Keys(ctx)
	}
	var keys []string
	for k, err := range seq {
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
