// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"io"
	"testing"

	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

func BenchmarkJSONLogger_Infof(b *testing.B) {
	log := logger.NewJSONLogger(logger.LevelInfo, io.Discard)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		log.Infof("Benchmark message %d", i)
	}
}

func BenchmarkDaemonLogger_Infof(b *testing.B) {
	log := logger.NewDaemonLogger(logger.LevelInfo, io.Discard)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		log.Infof("Benchmark message %d", i)
	}
}

func BenchmarkJSONLogger_InfofConcurrent(b *testing.B) {
	log := logger.NewJSONLogger(logger.LevelInfo, io.Discard)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			log.Infof("Concurrent message %d", i)
			i++
		}
	})
}
