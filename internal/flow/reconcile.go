package flow

import "context"

// 验证码通过后，用服务端已知的账号完整度对齐本地向导位置：
// 已有姓名且已有真实身份的老用户直接收尾；有姓名没身份的回到选身份；
// 其余一律按新用户处理。快照异常时宁可多收集一次资料，也不能把
// 已通过验证的用户卡在原地。

// AccountSnapshot 协调查询的结果，只读输入。
// Role 为 customer 哨兵值时视为"还没有真实身份"。
type AccountSnapshot struct {
	Name string
	Role Role
}

// Committed 快照中是否携带一个已提交的真实身份
func (s *AccountSnapshot) Committed() bool {
	return s != nil && s.Role.Concrete()
}

// ReconcileOutcome 协调后的落点
type ReconcileOutcome string

const (
	// ReconcileFinalized 账号已完整，流程直接收尾
	ReconcileFinalized ReconcileOutcome = "finalized"
	// ReconcileAtRole 已有资料，跳到身份选择
	ReconcileAtRole ReconcileOutcome = "at_role"
	// ReconcileAtInfo 按新用户处理，跳到资料填写
	ReconcileAtInfo ReconcileOutcome = "at_info"
)

// Reconcile 套用决策表。每次验证码通过只调用一次，调用时忙碌位
// 仍由提交操作持有，所以这里不走 gateLocked。
func (n *Navigator) Reconcile(ctx context.Context, snap *AccountSnapshot) (ReconcileOutcome, error) {
	n.mu.Lock()
	if err := n.terminalLocked(); err != nil {
		n.mu.Unlock()
		return "", err
	}

	if snap == nil || snap.Name == "" {
		// 无名字或快照异常：新用户分支
		n.jumpLocked(StepInfo)
		n.mu.Unlock()
		return ReconcileAtInfo, nil
	}

	if snap.Committed() {
		role := snap.Role
		n.st.Role = role
		err := n.finalizeLocked(ctx, role) // 内部释放锁
		return ReconcileFinalized, err
	}

	n.jumpLocked(StepRole)
	n.mu.Unlock()
	return ReconcileAtRole, nil
}
