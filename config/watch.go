package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/pingcap/errors"
)

// reloadDelay 文件变化后等待的时间, 避免读到写了一半的文件
var reloadDelay = 250 * time.Millisecond

// Watch 监听配置文件, 文件变化且校验通过后调用 onChange. 阻塞到 ctx 结束.
// 时间轮的槽位和 tick 在构造后不可修改, 宿主通常只重新应用日志配置.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	dir := filepath.Dir(path)
	file := filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Trace(err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer w.Close()

	// 监听目录, 编辑器替换文件时也能收到事件
	if err := w.Add(dir); err != nil {
		return errors.Annotatef(err, "watch %v", dir)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			log.Error("Tickwheel config reload failed, keep the previous one.", err)
			return
		}
		onChange(cfg)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, reload)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("Tickwheel config watcher error.", err)
		}
	}
}
