// Copyright 2026 Blink Labs Software
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

package wombat

import "time"

// NetworkParams holds the per-network governance parameters
type NetworkParams struct {
	Name          string
	MinDeposit    uint64
	VotingPeriod  time.Duration
	TimelockDelay time.Duration
	// QuorumPercent is the share of total voting power that must
	// participate for a proposal to pass
	QuorumPercent uint64
}

var networks = map[string]NetworkParams{
	"mainnet": {
		Name:          "mainnet",
		MinDeposit:    10_000_000,
		VotingPeriod:  7 * 24 * time.Hour,
		TimelockDelay: 2 * 24 * time.Hour,
		QuorumPercent: 4,
	},
	"testnet": {
		Name:          "testnet",
		MinDeposit:    100_000,
		VotingPeriod:  24 * time.Hour,
		TimelockDelay: 24 * time.Hour,
		QuorumPercent: 4,
	},
}

// NetworkByName returns the named network's parameters
func NetworkByName(name string) (NetworkParams, bool) {
	params, ok := networks[name]
	return params, ok
}
