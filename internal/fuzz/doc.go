// Package fuzztests houses Go fuzz harnesses for the tree loader and the
// resolver. Its goal is to smoke test robustness and guard against panics
// or hangs on arbitrary trees.
//
// Назначение: загружать произвольные байты как дерево деклараций и
// прогонять результат через резолвер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/treeio, internal/resolve, internal/testkit.
package fuzztests
