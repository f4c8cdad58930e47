package permissions

import "net/http"

// methodActions HTTP 方法到模型操作的映射
var methodActions = map[string]Action{
	http.MethodGet:     ActionView,
	http.MethodOptions: ActionView,
	http.MethodHead:    ActionView,
	http.MethodPost:    ActionAdd,
	http.MethodPut:     ActionChange,
	http.MethodPatch:   ActionChange,
	http.MethodDelete:  ActionDelete,
}

// ActionForMethod 返回 HTTP 方法对应的操作
func ActionForMethod(method string) (Action, bool) {
	action, ok := methodActions[method]
	return action, ok
}

// PermForMethod 返回 HTTP 方法在指定模型上需要的规则名
func PermForMethod(method, app, modelName string) (string, bool) {
	action, ok := ActionForMethod(method)
	if !ok {
		return "", false
	}
	return PermName(app, action, modelName), true
}

// IsSafeMethod 只读方法
func IsSafeMethod(method string) bool {
	action, ok := methodActions[method]
	return ok && action == ActionView
}
