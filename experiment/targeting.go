package experiment

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/scholarrec/core"
)

var (
	// targetingEnv 是全局的 CEL 环境，线程安全，可复用
	targetingEnv     *cel.Env
	targetingEnvOnce sync.Once
	targetingEnvErr  error

	// compiledRules 缓存编译后的准入表达式（表达式文本 → cel.Program）
	compiledRules sync.Map
)

func getTargetingEnv() (*cel.Env, error) {
	targetingEnvOnce.Do(func() {
		targetingEnv, targetingEnvErr = cel.NewEnv(
			cel.Variable("user", cel.DynType),
		)
	})
	return targetingEnv, targetingEnvErr
}

// Eligible 判断用户是否满足变体的 CEL 准入表达式。
//
// 表达式以 `user` 为顶层变量，例如：
//   - user.department == "cs"
//   - user.institution != "" && "genomics" in user.interests
//
// 空表达式表示全量用户可进组。表达式编译失败或求值失败时返回错误，
// 调用方应跳过该变体而不是让整个分桶流程失败。
func Eligible(rule string, profile *core.UserProfile) (bool, error) {
	if rule == "" {
		return true, nil
	}

	prg, err := compileRule(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"user": userInput(profile),
	})
	if err != nil {
		return false, fmt.Errorf("targeting eval error: %v", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("targeting rule must return boolean, got %T", out.Value())
	}
	return result, nil
}

func compileRule(rule string) (cel.Program, error) {
	if cached, ok := compiledRules.Load(rule); ok {
		return cached.(cel.Program), nil
	}

	env, err := getTargetingEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("targeting compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("targeting program error: %v", err)
	}
	compiledRules.Store(rule, prg)
	return prg, nil
}

func userInput(profile *core.UserProfile) map[string]interface{} {
	if profile == nil {
		return map[string]interface{}{
			"id":          "",
			"department":  "",
			"institution": "",
			"interests":   []string{},
		}
	}
	return map[string]interface{}{
		"id":          profile.UserID,
		"department":  profile.Department,
		"institution": profile.Institution,
		"interests":   profile.Interests,
	}
}
