package main

import (
	"fmt"
	"os"

	"github.com/wasya-io/kilonote/app/boundary/filemanager"
	"github.com/wasya-io/kilonote/app/boundary/logger"
	"github.com/wasya-io/kilonote/app/boundary/memsurface"
	"github.com/wasya-io/kilonote/app/boundary/reporter"
	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/usecase/session"
)

// Editor はCLIが扱う編集セッション一式
// セッションへの操作はすべてイベントループ上で行う
type Editor struct {
	conf    *config.Config
	logger  *logger.Logger
	surface *memsurface.Surface
	loop    *scheduler.Loop
	session *session.Session
	files   *filemanager.StandardFileManager
}

// globalFlags はサブコマンド共通のフラグ
type globalFlags struct {
	debug  bool
	logDir string
}

// NewEditor は設定を読み込み、編集セッションを構築する
func NewEditor(flags globalFlags) (*Editor, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flags.debug {
		conf.DebugMode = true
	}
	if flags.logDir != "" {
		conf.LogDir = flags.logDir
	}

	log := logger.NewWithDir(conf.DebugMode, conf.LogDir)
	env := config.DetectEnvironment()

	// イベントループと編集面の初期化
	loop := scheduler.NewLoop()
	surf := memsurface.New()

	sess := session.New(surf, loop,
		session.WithConfig(conf),
		session.WithLogger(log),
		session.WithEnvironment(env),
		session.WithReporter(reporter.NewFileReporter(conf.LogDir)),
	)

	ed := &Editor{
		conf:    conf,
		logger:  log,
		surface: surf,
		loop:    loop,
		session: sess,
		files:   filemanager.NewFileManager(),
	}

	// 自動保存の要求は開いているファイルへ書き込む
	sess.Bus().On(event.TypeSaveRequested, func(ev event.Event) {
		if err := ed.files.HandleSaveRequest(ev); err != nil {
			log.Log("warn", fmt.Sprintf("autosave failed: %v", err))
			return
		}
		log.Log("debug", "autosave: "+ed.files.GetFilename())
	})
	return ed, nil
}

// do はループ上で fn を実行し、完了を待つ
func (e *Editor) do(fn func()) {
	e.loop.Do(fn)
}

// Open はファイルを読み込んで編集面に反映する
func (e *Editor) Open(filename string) error {
	raw, err := e.files.OpenFile(filename)
	if err != nil {
		return err
	}
	e.do(func() { err = e.session.Load(raw) })
	return err
}

// OpenOrCreate はファイルがなければ空のノートとして作成する
func (e *Editor) OpenOrCreate(filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		var saveErr error
		e.do(func() {
			stored, err := e.session.Snapshot()
			if err != nil {
				saveErr = err
				return
			}
			saveErr = e.files.SaveFile(filename, stored)
		})
		return saveErr
	}
	return e.Open(filename)
}

// Save は現在のドキュメントを開いているファイルに保存する
func (e *Editor) Save() error {
	var err error
	e.do(func() {
		stored, snapErr := e.session.Snapshot()
		if snapErr != nil {
			err = snapErr
			return
		}
		err = e.files.SaveCurrentFile(stored)
	})
	return err
}

// Cleanup はセッションとループを停止する
func (e *Editor) Cleanup() {
	e.do(e.session.Close)
	e.loop.Shutdown()
}
