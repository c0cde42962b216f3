// Copyright 2025 Blink Labs Software
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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	operationsTotal *prometheus.CounterVec
	totalStaked     prometheus.Gauge
	blockHeight     prometheus.Gauge
	badgesMinted    prometheus.Counter
	badgesBurned    prometheus.Counter
	accounts        prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operationsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustledger_ledger_operations_total",
			Help: "total ledger calls by operation and result",
		},
		[]string{"operation", "result"},
	)
	m.totalStaked = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "trustledger_ledger_total_staked",
		Help: "sum of staked amounts across all accounts",
	})
	m.blockHeight = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "trustledger_ledger_block_height",
		Help: "block height observed by the last ledger call",
	})
	m.badgesMinted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "trustledger_ledger_badges_minted_total",
		Help: "total number of badges minted",
	})
	m.badgesBurned = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "trustledger_ledger_badges_burned_total",
		Help: "total number of badges burned",
	})
	m.accounts = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "trustledger_ledger_accounts",
		Help: "number of account records",
	})
}

// observe records the outcome of a ledger call
func (m *stateMetrics) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if code := ErrorCode(err); code != 0 {
			result = errorResults[code]
		}
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

var errorResults = map[uint]string{
	ErrorCodeUnauthorized:           "unauthorized",
	ErrorCodeInsufficientStake:      "insufficient_stake",
	ErrorCodeInvalidAmount:          "invalid_amount",
	ErrorCodeUserNotFound:           "user_not_found",
	ErrorCodeBadgeNotFound:          "badge_not_found",
	ErrorCodeBadgeExists:            "badge_exists",
	ErrorCodeInsufficientReputation: "insufficient_reputation",
	ErrorCodeTransferFailed:         "transfer_failed",
	ErrorCodeInvalidPrincipal:       "invalid_principal",
}
