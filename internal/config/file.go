package config

import (
	"fmt"
	"time"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/normalize"
)

// file mirrors the HCL layout. Every attribute is optional; nil means
// "keep the default".
//
//	log_level = "info"
//	shape     = "flat"
//
//	model {
//	  provider    = "openai"
//	  name        = "gpt-4o"
//	  temperature = 0.2
//	}
//
//	normalize {
//	  repair_geometry = true
//	  cooling_check   = "warn"
//	}
//
//	stream {
//	  chunk_size     = 100
//	  chunk_delay_ms = 50
//	}
//
//	server {
//	  addr = ":8080"
//	}
type file struct {
	LogLevel  *string         `hcl:"log_level,optional"`
	Shape     *string         `hcl:"shape,optional"`
	Model     *modelBlock     `hcl:"model,block"`
	Normalize *normalizeBlock `hcl:"normalize,block"`
	Stream    *streamBlock    `hcl:"stream,block"`
	Server    *serverBlock    `hcl:"server,block"`
}

type modelBlock struct {
	Provider    *string  `hcl:"provider,optional"`
	Name        *string  `hcl:"name,optional"`
	BaseURL     *string  `hcl:"base_url,optional"`
	APIKey      *string  `hcl:"api_key,optional"`
	Temperature *float64 `hcl:"temperature,optional"`
	MaxTokens   *int     `hcl:"max_tokens,optional"`
}

type normalizeBlock struct {
	RepairGeometry *bool   `hcl:"repair_geometry,optional"`
	CoolingCheck   *string `hcl:"cooling_check,optional"`
	ExtractFenced  *bool   `hcl:"extract_fenced,optional"`
}

type streamBlock struct {
	ChunkSize    *int `hcl:"chunk_size,optional"`
	ChunkDelayMS *int `hcl:"chunk_delay_ms,optional"`
}

type serverBlock struct {
	Addr        *string `hcl:"addr,optional"`
	CORSOrigins *string `hcl:"cors_origins,optional"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (f *file) apply(c *Config) error {
	set(&c.LogLevel, f.LogLevel)
	if f.Shape != nil {
		shape, err := floorplan.ParseShape(*f.Shape)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.Shape = shape
	}

	if m := f.Model; m != nil {
		set(&c.Model.Provider, m.Provider)
		set(&c.Model.Model, m.Name)
		set(&c.Model.BaseURL, m.BaseURL)
		set(&c.Model.APIKey, m.APIKey)
		set(&c.Model.Temperature, m.Temperature)
		set(&c.Model.MaxTokens, m.MaxTokens)
	}
	if n := f.Normalize; n != nil {
		set(&c.Normalize.RepairGeometry, n.RepairGeometry)
		set(&c.Normalize.ExtractFenced, n.ExtractFenced)
		if n.CoolingCheck != nil {
			cc, err := normalize.ParseCoolingCheck(*n.CoolingCheck)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			c.Normalize.CoolingCheck = cc
		}
	}
	if s := f.Stream; s != nil {
		set(&c.Stream.ChunkSize, s.ChunkSize)
		if s.ChunkDelayMS != nil {
			c.Stream.ChunkDelay = time.Duration(*s.ChunkDelayMS) * time.Millisecond
		}
	}
	if s := f.Server; s != nil {
		set(&c.Server.Addr, s.Addr)
		set(&c.Server.CORSOrigins, s.CORSOrigins)
	}
	return nil
}
