package flow

// 步骤序列是 (模式, 身份) 的纯函数，每次查询重新计算，绝不原地修改，
// 位置永远通过步骤标识在当前序列里重新解析，避免身份变化后索引失效

var freshHead = []Step{StepWelcome, StepPhoneInput, StepVerify, StepInfo, StepRole}

var roleTails = map[Role][]Step{
	RoleDriver:   {StepDriverForm, StepDriverDocs},
	RoleMerchant: {StepMerchantForm, StepMerchantDocs},
	RoleBoth:     {StepDriverForm, StepDriverDocs, StepMerchantForm, StepMerchantDocs},
}

// Plan 计算当前步骤序列
// 加开身份模式只剩对应身份的表单和资质两步；全新入驻为固定头部加身份尾部
func Plan(mode Mode, role Role) []Step {
	if mode.Secondary {
		tail := roleTails[mode.SecondaryRole]
		plan := make([]Step, len(tail))
		copy(plan, tail)
		return plan
	}

	plan := make([]Step, 0, len(freshHead)+4)
	plan = append(plan, freshHead...)
	plan = append(plan, roleTails[role]...)
	return plan
}

// IndexOf 在序列中解析步骤位置，不存在返回 -1
func IndexOf(plan []Step, s Step) int {
	for i, step := range plan {
		if step == s {
			return i
		}
	}
	return -1
}

// ProgressPercent 计算展示用进度，(索引+1)/长度，0-100
// 步骤不在序列中时返回 0
func ProgressPercent(plan []Step, s Step) int {
	idx := IndexOf(plan, s)
	if idx < 0 || len(plan) == 0 {
		return 0
	}
	return (idx + 1) * 100 / len(plan)
}
