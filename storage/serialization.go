// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/quarry/core"
)

// MUS serializers for the snapshot payload. Hand-written: the payload is a
// single small struct plus a fixed-format meta record.
var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
)

// SnapshotMeta describes the configuration of a persisted index snapshot.
// An entry payload is only meaningful together with its meta record.
type SnapshotMeta struct {
	Dimension int
	Metric    core.Metric
	Count     int
}

type snapshotMetaSer struct{}

// SnapshotMetaMUS serializes SnapshotMeta in MUS format.
var SnapshotMetaMUS = snapshotMetaSer{}

func (snapshotMetaSer) Marshal(meta SnapshotMeta, bs []byte) (n int) {
	n = varint.Int.Marshal(meta.Dimension, bs)
	n += varint.Int.Marshal(int(meta.Metric), bs[n:])
	n += varint.Int.Marshal(meta.Count, bs[n:])
	return n
}

func (snapshotMetaSer) Unmarshal(bs []byte) (meta SnapshotMeta, n int, err error) {
	var n1 int
	meta.Dimension, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var metric int
	metric, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	meta.Metric = core.Metric(metric)
	meta.Count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (snapshotMetaSer) Size(meta SnapshotMeta) (size int) {
	size = varint.Int.Size(meta.Dimension)
	size += varint.Int.Size(int(meta.Metric))
	size += varint.Int.Size(meta.Count)
	return size
}

type fragmentSer struct{}

// FragmentMUS serializes core.Fragment in MUS format.
var FragmentMUS = fragmentSer{}

func (fragmentSer) Marshal(fragment core.Fragment, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(fragment.Id), bs)
	n += ord.String.Marshal(fragment.Text, bs[n:])
	n += metadataMUS.Marshal(fragment.Metadata, bs[n:])
	n += varint.Int.Marshal(fragment.Offset, bs[n:])
	n += vectorMUS.Marshal(fragment.Vector, bs[n:])
	return n
}

func (fragmentSer) Unmarshal(bs []byte) (fragment core.Fragment, n int, err error) {
	var n1 int
	var id uint64
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	fragment.Id = core.ID(id)
	fragment.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	fragment.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	fragment.Offset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	fragment.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (fragmentSer) Size(fragment core.Fragment) (size int) {
	size = varint.Uint64.Size(uint64(fragment.Id))
	size += ord.String.Size(fragment.Text)
	size += metadataMUS.Size(fragment.Metadata)
	size += varint.Int.Size(fragment.Offset)
	size += vectorMUS.Size(fragment.Vector)
	return size
}

// MarshalSnapshotMeta serializes a SnapshotMeta to bytes.
func MarshalSnapshotMeta(meta SnapshotMeta) []byte {
	buf := make([]byte, SnapshotMetaMUS.Size(meta))
	SnapshotMetaMUS.Marshal(meta, buf)
	return buf
}

// UnmarshalSnapshotMeta deserializes a SnapshotMeta from bytes.
func UnmarshalSnapshotMeta(data []byte) (SnapshotMeta, error) {
	meta, _, err := SnapshotMetaMUS.Unmarshal(data)
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return meta, nil
}

// MarshalFragment serializes a Fragment to bytes.
func MarshalFragment(fragment *core.Fragment) []byte {
	buf := make([]byte, FragmentMUS.Size(*fragment))
	FragmentMUS.Marshal(*fragment, buf)
	return buf
}

// UnmarshalFragment deserializes a Fragment from bytes.
func UnmarshalFragment(data []byte) (*core.Fragment, error) {
	fragment, _, err := FragmentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &fragment, nil
}
