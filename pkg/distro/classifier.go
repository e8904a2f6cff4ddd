package distro

import (
	"context"
	"sync"
)

// Cache stores the detected Info for the lifetime of a run. It is satisfied
// by *session.Session.
type Cache interface {
	Distro() *Info
	SetDistro(info *Info) error
}

// Classifier answers distro questions, detecting the host on first use and
// caching the result. It is safe for concurrent use.
type Classifier struct {
	mu       sync.Mutex
	detector Detector
	cache    Cache
	info     *Info
}

// NewClassifier returns a Classifier backed by detector. cache may be nil.
func NewClassifier(detector Detector, cache Cache) *Classifier {
	return &Classifier{detector: detector, cache: cache}
}

// NewStaticClassifier returns a Classifier that always reports info.
func NewStaticClassifier(info *Info) *Classifier {
	return &Classifier{info: info.Clone()}
}

// Info returns the host identity, detecting it if necessary.
func (c *Classifier) Info(ctx context.Context) (*Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.info != nil {
		return c.info.Clone(), nil
	}
	if c.cache != nil {
		if cached := c.cache.Distro(); cached != nil && cached.DistroTag != "" {
			c.info = cached.Clone()
			return c.info.Clone(), nil
		}
	}

	info, err := c.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	c.info = info.Clone()
	if c.cache != nil {
		// Save errors are ignored; the next run re-detects.
		_ = c.cache.SetDistro(c.info.Clone())
	}
	return c.info.Clone(), nil
}

func (c *Classifier) predicate(ctx context.Context, fn func(*Info) bool) (bool, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return false, err
	}
	return fn(info), nil
}

func (c *Classifier) IsUbuntu(ctx context.Context) (bool, error) {
	return c.predicate(ctx, IsUbuntu)
}

func (c *Classifier) IsDebianFamily(ctx context.Context) (bool, error) {
	return c.predicate(ctx, IsDebianFamily)
}

func (c *Classifier) IsFedora(ctx context.Context) (bool, error) {
	return c.predicate(ctx, IsFedora)
}

func (c *Classifier) IsSUSE(ctx context.Context) (bool, error) {
	return c.predicate(ctx, IsSUSE)
}

func (c *Classifier) IsOracleLinux(ctx context.Context) (bool, error) {
	return c.predicate(ctx, IsOracleLinux)
}
