// Package pkg provides the core libraries for fourup collage composition.
//
// # Overview
//
// Fourup lays out exactly four images into a fixed-width collage with
// pixel-exact, gap-free geometry. The pkg directory is organized into:
//
//  1. [collage] - Domain logic (sources, parameters, the build API)
//  2. [collage/layout] - Arrangement classification and exact geometry
//  3. [collage/compose] - Canvas painting, borders, resampling
//  4. [codec] - Image sniffing, decoding, and atomic JPEG output
//  5. [pipeline] - Orchestration (fetch → decode → layout → compose → encode)
//  6. [cache], [httputil] - Remote source fetching with byte caching
//
// # Architecture
//
// The typical data flow through fourup:
//
//	Local paths / URLs
//	         ↓
//	    [httputil] + [codec] (fetch and decode sources)
//	         ↓
//	    [collage/layout] (sort by ratio, classify, solve geometry)
//	         ↓
//	    [collage/compose] (paint canvas, borders, resampled images)
//	         ↓
//	    JPEG output
//
// # Quick Start
//
//	params := collage.DefaultParams()
//	b := collage.NewBuilder(params)
//	for _, src := range sources {
//	    if err := b.Add(src); err != nil {
//	        return err
//	    }
//	}
//	if err := b.Build("collage.jpg"); err != nil {
//	    return err
//	}
//
// Supporting packages ([errors], [observability], [buildinfo]) provide the
// ambient concerns shared by the CLI and HTTP surfaces.
package pkg
