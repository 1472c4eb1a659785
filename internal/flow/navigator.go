package flow

import (
	"context"
	"sync"

	pkgerrors "PartnerGo/pkg/errors"
)

// Hooks 导航器到外部协作方的出口。
// Finalize 提交最终身份并结束流程；CancelSecondary 取消加开身份流程。
// 两个回调都只会被调用一次。
type Hooks struct {
	Finalize        func(ctx context.Context, role Role) error
	CancelSecondary func(ctx context.Context) error
}

// State 会话的可序列化导航状态，整体存入 Redis。
// 位置只记录步骤标识，索引永远在当前序列中即时解析。
type State struct {
	Mode      Mode `json:"mode"`
	Role      Role `json:"role"`
	Step      Step `json:"step"`
	Busy      bool `json:"busy"`
	Finalized bool `json:"finalized"`
	Cancelled bool `json:"cancelled"`
}

// Navigator 导航控制器：持有当前位置，负责前进/后退/跳转/跳过，
// 以及异步操作期间的忙碌位。一个会话一个实例。
type Navigator struct {
	mu    sync.Mutex
	st    State
	hooks Hooks
}

func NewNavigator(mode Mode, hooks Hooks) *Navigator {
	st := State{Mode: mode}
	st.Step = Plan(mode, RoleNone)[0]
	return &Navigator{st: st, hooks: hooks}
}

// Restore 从持久化状态恢复导航器。
// 状态里的步骤若已不在当前序列中（历史数据损坏），回退到序列首步。
func Restore(st State, hooks Hooks) *Navigator {
	plan := Plan(st.Mode, st.Role)
	if IndexOf(plan, st.Step) < 0 {
		st.Step = plan[0]
	}
	return &Navigator{st: st, hooks: hooks}
}

// State 返回当前状态快照
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.st
}

func (n *Navigator) CurrentStep() Step {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.st.Step
}

// Progress 展示用进度百分比，每次即时计算
func (n *Navigator) Progress() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ProgressPercent(Plan(n.st.Mode, n.st.Role), n.st.Step)
}

func (n *Navigator) Busy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.st.Busy
}

// BeginAsync 置忙碌位。已有异步操作在途或流程已终止时拒绝。
// 每个成功的 BeginAsync 必须在所有返回路径上配对 EndAsync。
func (n *Navigator) BeginAsync() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.terminalLocked(); err != nil {
		return err
	}
	if n.st.Busy {
		return pkgerrors.OnboardingBusy
	}
	n.st.Busy = true
	return nil
}

// EndAsync 清除忙碌位，成功和失败路径都要调用
func (n *Navigator) EndAsync() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.st.Busy = false
}

// SelectRole 设定入驻身份。仅全新入驻、仅一次、只能从未选到具体身份。
// 序列尾部随之增长，当前位置按步骤标识保持不变。
func (n *Navigator) SelectRole(role Role) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.gateLocked(); err != nil {
		return err
	}
	if n.st.Mode.Secondary {
		return pkgerrors.OnboardingModeInvalid
	}
	if !role.Concrete() {
		return pkgerrors.OnboardingRoleInvalid
	}
	if n.st.Role != RoleNone {
		return pkgerrors.OnboardingRoleAlreadySet
	}
	n.st.Role = role
	return nil
}

// Advance 前进一步；在序列末位时触发 Finalize 并终止流程
func (n *Navigator) Advance(ctx context.Context) error {
	n.mu.Lock()
	if err := n.gateLocked(); err != nil {
		n.mu.Unlock()
		return err
	}

	plan := Plan(n.st.Mode, n.st.Role)
	idx := IndexOf(plan, n.st.Step)
	if idx < 0 {
		// 防御：状态损坏时回到首步而不是崩溃
		n.st.Step = plan[0]
		n.mu.Unlock()
		return pkgerrors.OnboardingStepInvalid
	}

	if idx < len(plan)-1 {
		n.st.Step = plan[idx+1]
		n.mu.Unlock()
		return nil
	}

	return n.finalizeLocked(ctx, n.resolvedRoleLocked())
}

// Retreat 后退一步。
// 加开身份模式在首步后退触发取消；全新入驻在首步后退为空操作。
func (n *Navigator) Retreat(ctx context.Context) error {
	n.mu.Lock()
	if err := n.gateLocked(); err != nil {
		n.mu.Unlock()
		return err
	}

	plan := Plan(n.st.Mode, n.st.Role)
	idx := IndexOf(plan, n.st.Step)
	if idx <= 0 {
		if n.st.Mode.Secondary {
			n.st.Cancelled = true
			cancel := n.hooks.CancelSecondary
			n.mu.Unlock()
			if cancel != nil {
				return cancel(ctx)
			}
			return nil
		}
		// 全新入驻不能退出欢迎页
		n.mu.Unlock()
		return nil
	}

	n.st.Step = plan[idx-1]
	n.mu.Unlock()
	return nil
}

// JumpTo 按步骤标识跳转。标识不在当前序列中时不动作，返回 false。
func (n *Navigator) JumpTo(step Step) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.st.Finalized || n.st.Cancelled {
		return false
	}
	return n.jumpLocked(step)
}

// Skip 跳过当前步骤，仅资质材料步骤允许
func (n *Navigator) Skip(ctx context.Context) error {
	n.mu.Lock()
	skippable := n.st.Step.IsDocs()
	n.mu.Unlock()
	if !skippable {
		return pkgerrors.OnboardingStepInvalid
	}
	return n.Advance(ctx)
}

// ResolvedRole 最终应提交的身份：全新入驻取所选身份，加开模式取加开身份
func (n *Navigator) ResolvedRole() Role {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resolvedRoleLocked()
}

func (n *Navigator) resolvedRoleLocked() Role {
	if n.st.Mode.Secondary {
		return n.st.Mode.SecondaryRole
	}
	return n.st.Role
}

func (n *Navigator) jumpLocked(step Step) bool {
	plan := Plan(n.st.Mode, n.st.Role)
	if IndexOf(plan, step) < 0 {
		return false
	}
	n.st.Step = step
	return true
}

// finalizeLocked 调用方持锁进入，内部释放锁后回调 Finalize。
// Finalized 位先置位，保证回调只发生一次，之后的导航操作全部拒绝。
func (n *Navigator) finalizeLocked(ctx context.Context, role Role) error {
	n.st.Finalized = true
	finalize := n.hooks.Finalize
	n.mu.Unlock()

	if finalize == nil {
		return nil
	}
	return finalize(ctx, role)
}

func (n *Navigator) terminalLocked() error {
	if n.st.Finalized {
		return pkgerrors.OnboardingFinalized
	}
	if n.st.Cancelled {
		return pkgerrors.OnboardingCancelled
	}
	return nil
}

func (n *Navigator) gateLocked() error {
	if err := n.terminalLocked(); err != nil {
		return err
	}
	if n.st.Busy {
		return pkgerrors.OnboardingBusy
	}
	return nil
}
