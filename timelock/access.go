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

package timelock

import (
	"sync"

	"github.com/blinklabs-io/wombat/principal"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProposer  Role = "proposer"
	RoleExecutor  Role = "executor"
	RoleCanceller Role = "canceller"
)

// AccessControl is the role table gating queue operations. An empty executor
// role set means execution is open to anyone.
type AccessControl struct {
	mutex sync.RWMutex
	roles map[Role]map[principal.Address]struct{}
}

func NewAccessControl() *AccessControl {
	return &AccessControl{
		roles: make(map[Role]map[principal.Address]struct{}),
	}
}

// Grant adds an account to a role
func (a *AccessControl) Grant(role Role, account principal.Address) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	members, ok := a.roles[role]
	if !ok {
		members = make(map[principal.Address]struct{})
		a.roles[role] = members
	}
	members[account] = struct{}{}
}

// Revoke removes an account from a role
func (a *AccessControl) Revoke(role Role, account principal.Address) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	delete(a.roles[role], account)
}

// Has returns whether an account holds a role
func (a *AccessControl) Has(role Role, account principal.Address) bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	_, ok := a.roles[role][account]
	return ok
}

// Authorized returns whether an account may act in a role. The executor
// role is open when no explicit executors have been granted.
func (a *AccessControl) Authorized(role Role, account principal.Address) bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	members := a.roles[role]
	if role == RoleExecutor && len(members) == 0 {
		return true
	}
	_, ok := members[account]
	return ok
}
