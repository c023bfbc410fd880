// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package executor

import (
	_ "go.uber.org/automaxprocs"
)
