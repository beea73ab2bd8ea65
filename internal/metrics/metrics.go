// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exports Prometheus counters and histograms for the
// dispatcher (sign/verify/encrypt/decrypt/generate/validate, wired in
// openpgp/dispatch's package-level functions, which the Dispatcher
// methods delegate to) and packet codecs (PKESK, Secret-Key,
// wired in openpgp/packet), plus the HTTP exporter in server.go that
// cmd/pgpctl's metrics-serve command mounts.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "sage_pgp"

// Registry is a dedicated registry rather than prometheus.DefaultRegisterer
// so embedding callers can mount it alongside their own metrics without
// collisions.
var Registry = prometheus.NewRegistry()
